package command

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/linebot/internal/cal"
	"github.com/san-kum/linebot/internal/follower"
)

// Interpreter applies protocol commands to a follower. It also owns
// calibration mode: between "cal begin" and "cal end" the follower idles
// while samples widen a fresh set of bounds.
type Interpreter struct {
	fol     *follower.Follower
	sampler follower.Sampler

	channels int
	calObs   *cal.Observer
}

func NewInterpreter(fol *follower.Follower, sampler follower.Sampler, channels int) *Interpreter {
	return &Interpreter{fol: fol, sampler: sampler, channels: channels}
}

// Calibrating reports whether a calibration sweep is in progress.
func (in *Interpreter) Calibrating() bool { return in.calObs != nil }

// Poll takes one calibration sample when in calibration mode. The host
// polling loop calls this between command reads.
func (in *Interpreter) Poll() {
	if in.calObs != nil {
		in.calObs.Observe(in.sampler.Sample())
	}
}

// Handle executes one protocol line and returns the reply.
func (in *Interpreter) Handle(line string) string {
	cmd, err := Parse(line)
	if err != nil {
		return "err " + err.Error()
	}

	switch cmd.Kind {
	case KindStart:
		if in.calObs != nil {
			return "err calibration in progress"
		}
		in.fol.Start()
		return "ok"

	case KindStop:
		in.fol.Stop()
		return "ok"

	case KindStatus:
		p := in.fol.Params()
		mode := "idle"
		if in.fol.Active() {
			mode = "active"
		}
		if in.calObs != nil {
			mode = "calibrating"
		}
		return fmt.Sprintf("ok %s kp=%g ki=%g kd=%g base=%d cycle=%gms limit=%g",
			mode, p.PID.Kp, p.PID.Ki, p.PID.Kd, p.Base,
			float64(p.PID.CyclePeriod)/float64(time.Millisecond), p.PID.Limit)

	case KindSet:
		p := in.fol.Params()
		switch cmd.Param {
		case ParamKp:
			p.PID.Kp = cmd.Value
		case ParamKi:
			p.PID.Ki = cmd.Value
		case ParamKd:
			p.PID.Kd = cmd.Value
		case ParamBase:
			p.Base = int(cmd.Value)
		case ParamCycle:
			p.PID.CyclePeriod = time.Duration(cmd.Value * float64(time.Millisecond))
		case ParamLimit:
			p.PID.Limit = cmd.Value
		}
		in.fol.SetParams(p)
		return "ok"

	case KindCalBegin:
		in.fol.Stop()
		in.calObs = cal.NewObserver(in.channels)
		return "ok sweep the array across the line, then cal end"

	case KindCalEnd:
		if in.calObs == nil {
			return "err no calibration in progress"
		}
		if !in.calObs.Samples() {
			in.calObs = nil
			return "err no samples observed"
		}
		bounds := in.calObs.Bounds()
		in.calObs = nil
		in.fol.SetBounds(bounds)
		if bad := bounds.Degenerate(); len(bad) > 0 {
			return fmt.Sprintf("ok but channels %v saw no contrast", bad)
		}
		return "ok"
	}

	return "err unknown command"
}

// IdlePeriod paces the idle work between commands: calibration samples
// and the host's onIdle callback fire once per period.
const IdlePeriod = 5 * time.Millisecond

// Serve reads protocol lines from the device until the context is
// canceled or the device fails, replying to each. A single goroutine
// owns the blocking reads; commands, calibration samples and the onIdle
// callback are all handled sequentially on the calling goroutine, which
// the host uses to interleave control ticks. Closing the device unblocks
// a read pending at cancellation.
func (in *Interpreter) Serve(ctx context.Context, dev Device, onIdle func()) error {
	lines := make(chan string)
	readErr := make(chan error, 1)

	go func() {
		for {
			line, err := dev.ReadLine()
			if err != nil {
				readErr <- err
				return
			}
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(IdlePeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-readErr:
			return fmt.Errorf("command link read: %w", err)

		case line := <-lines:
			if err := dev.WriteLine(in.Handle(line)); err != nil {
				return err
			}

		case <-ticker.C:
			in.Poll()
			if onIdle != nil {
				onIdle()
			}
		}
	}
}
