package follower

import (
	"context"
	"testing"
	"time"

	"github.com/san-kum/linebot/internal/cal"
	"github.com/san-kum/linebot/internal/core"
)

// staticSampler always reports the same raw array.
type staticSampler struct {
	raw []int
}

func (s *staticSampler) Sample() []int { return s.raw }

// recordingActuator remembers every drive command.
type recordingActuator struct {
	left, right int
	calls       int
}

func (a *recordingActuator) Drive(left, right int) {
	a.left, a.right = left, right
	a.calls++
}

func idealBounds(n int) cal.Bounds {
	b := make(cal.Bounds, n)
	for i := range b {
		b[i] = cal.Channel{Black: 880, White: 100}
	}
	return b
}

func testParams() Params {
	return Params{
		PID: core.PIDConfig{
			Kp:          5,
			CyclePeriod: 10 * time.Millisecond,
			Limit:       100,
		},
		Base:       70,
		SpeedLimit: 255,
	}
}

// centered raw array: line between channels 3 and 4 of 8.
func centeredRaw() []int {
	return []int{100, 100, 250, 880, 880, 250, 100, 100}
}

func TestTickIdleDoesNothing(t *testing.T) {
	act := &recordingActuator{}
	f := New(&staticSampler{raw: centeredRaw()}, act, core.DefaultGeometry(), idealBounds(8), testParams())

	if _, ok := f.Tick(time.Unix(0, 0)); ok {
		t.Error("idle follower should not tick")
	}
	if act.calls != 0 {
		t.Error("idle follower must not actuate")
	}
}

func TestStopDrivesZeroAndResets(t *testing.T) {
	act := &recordingActuator{}
	f := New(&staticSampler{raw: centeredRaw()}, act, core.DefaultGeometry(), idealBounds(8), testParams())

	f.Start()
	now := time.Unix(0, 0)
	for i := 0; i < 5; i++ {
		now = now.Add(20 * time.Millisecond)
		f.Tick(now)
	}

	f.Stop()
	if act.left != 0 || act.right != 0 {
		t.Errorf("stop must command zero speeds, got (%d, %d)", act.left, act.right)
	}
	if f.Active() {
		t.Error("follower should be idle after Stop")
	}
}

func TestRestartIsColdStart(t *testing.T) {
	// Drive a biased line long enough to wind the integral, then verify
	// a stop/start produces the same first output as a fresh follower.
	biased := []int{100, 880, 250, 100, 100, 100, 100, 100}

	params := testParams()
	params.PID.Ki = 10

	act := &recordingActuator{}
	f := New(&staticSampler{raw: biased}, act, core.DefaultGeometry(), idealBounds(8), params)

	f.Start()
	now := time.Unix(0, 0)
	for i := 0; i < 50; i++ {
		now = now.Add(20 * time.Millisecond)
		f.Tick(now)
	}
	f.Stop()
	f.Start()

	tick, _ := f.Tick(now.Add(time.Hour))

	fresh := New(&staticSampler{raw: biased}, &recordingActuator{}, core.DefaultGeometry(), idealBounds(8), params)
	fresh.Start()
	freshTick, _ := fresh.Tick(time.Unix(0, 0))

	if tick.Output != freshTick.Output {
		t.Errorf("restart leaked controller memory: %f vs cold %f", tick.Output, freshTick.Output)
	}
}

func TestGatedTickHoldsSpeeds(t *testing.T) {
	act := &recordingActuator{}
	f := New(&staticSampler{raw: centeredRaw()}, act, core.DefaultGeometry(), idealBounds(8), testParams())

	f.Start()
	now := time.Unix(0, 0)
	first, _ := f.Tick(now)
	if !first.Evaluated {
		t.Fatal("first tick should evaluate")
	}
	calls := act.calls

	// Poll again well inside the cycle period.
	held, _ := f.Tick(now.Add(time.Millisecond))
	if held.Evaluated {
		t.Error("tick inside the cycle period must not evaluate")
	}
	if held.Left != first.Left || held.Right != first.Right {
		t.Error("gated tick should hold the previous speeds")
	}
	if act.calls != calls {
		t.Error("gated tick must not re-actuate")
	}
}

func TestTickCopiesBuffers(t *testing.T) {
	raw := centeredRaw()
	f := New(&staticSampler{raw: raw}, &recordingActuator{}, core.DefaultGeometry(), idealBounds(8), testParams())

	f.Start()
	first, _ := f.Tick(time.Unix(0, 0))

	// The sampler reuses its buffer; overwrite it before the next cycle.
	for i := range raw {
		raw[i] = 100
	}
	raw[0] = 880
	second, _ := f.Tick(time.Unix(0, 0).Add(20 * time.Millisecond))

	if first.Raw[3] != 880 {
		t.Errorf("a held tick must keep its own raw sample, got %d", first.Raw[3])
	}
	if first.Readings[3] == second.Readings[3] {
		t.Error("ticks must not share a readings buffer")
	}
}

func TestParamsApplyNextTick(t *testing.T) {
	act := &recordingActuator{}
	f := New(&staticSampler{raw: centeredRaw()}, act, core.DefaultGeometry(), idealBounds(8), testParams())

	f.Start()
	f.Tick(time.Unix(0, 0))

	p := f.Params()
	p.Base = 120
	f.SetParams(p)

	tick, _ := f.Tick(time.Unix(0, 0).Add(20 * time.Millisecond))
	if tick.Left != 120 || tick.Right != 120 {
		t.Errorf("new base should apply on next evaluation: got (%d, %d)", tick.Left, tick.Right)
	}
}

func TestRunCollectsTrace(t *testing.T) {
	act := &recordingActuator{}
	f := New(&staticSampler{raw: centeredRaw()}, act, core.DefaultGeometry(), idealBounds(8), testParams())

	result, err := f.Run(context.Background(), RunConfig{
		Duration: 100 * time.Millisecond,
		Poll:     5 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(result.Times) != 20 {
		t.Errorf("expected 20 samples, got %d", len(result.Times))
	}
	if f.Active() {
		t.Error("run should stop the follower on return")
	}
}

func TestRunRejectsBadConfig(t *testing.T) {
	f := New(&staticSampler{raw: centeredRaw()}, &recordingActuator{}, core.DefaultGeometry(), idealBounds(8), testParams())

	if _, err := f.Run(context.Background(), RunConfig{Duration: time.Second}); err == nil {
		t.Error("zero poll interval should be rejected")
	}
	if _, err := f.Run(context.Background(), RunConfig{Poll: time.Millisecond}); err == nil {
		t.Error("zero duration should be rejected")
	}
}

func TestRunHonorsContext(t *testing.T) {
	f := New(&staticSampler{raw: centeredRaw()}, &recordingActuator{}, core.DefaultGeometry(), idealBounds(8), testParams())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := f.Run(ctx, RunConfig{Duration: time.Second, Poll: time.Millisecond}); err == nil {
		t.Error("canceled context should abort the run")
	}
}
