package follower

import (
	"time"

	"github.com/san-kum/linebot/internal/cal"
	"github.com/san-kum/linebot/internal/core"
)

// Follower threads one control cycle per Tick call: sample, normalize,
// estimate, evaluate the controller, mix, actuate.
type Follower struct {
	sampler  Sampler
	actuator Actuator

	geom   core.Geometry
	bounds cal.Bounds
	params Params

	active bool
	pid    core.PIDState

	readings []int
	lastOut  float64
	lastL    int
	lastR    int

	observers []Observer
	metrics   []Metric
}

func New(sampler Sampler, actuator Actuator, geom core.Geometry, bounds cal.Bounds, params Params) *Follower {
	return &Follower{
		sampler:  sampler,
		actuator: actuator,
		geom:     geom,
		bounds:   bounds,
		params:   params,
		readings: make([]int, geom.Channels),
	}
}

func (f *Follower) AddObserver(o Observer) { f.observers = append(f.observers, o) }
func (f *Follower) AddMetric(m Metric)     { f.metrics = append(f.metrics, m) }

// SetParams swaps the tunables; they take effect on the next tick.
func (f *Follower) SetParams(p Params) { f.params = p }
func (f *Follower) Params() Params     { return f.params }

// SetBounds installs new calibration, typically after a sweep.
func (f *Follower) SetBounds(b cal.Bounds) { f.bounds = b }
func (f *Follower) Bounds() cal.Bounds     { return f.bounds }

func (f *Follower) Active() bool { return f.active }

// Start transitions idle -> active with fresh controller memory.
func (f *Follower) Start() {
	if f.active {
		return
	}
	f.active = true
	f.pid = core.PIDState{}
	f.lastOut = 0
	f.lastL, f.lastR = 0, 0
}

// Stop is a hard stop: controller memory is dropped immediately and the
// wheels are commanded to zero. A later Start sees a cold controller.
func (f *Follower) Stop() {
	if !f.active {
		return
	}
	f.active = false
	f.pid = core.PIDState{}
	f.lastOut = 0
	f.lastL, f.lastR = 0, 0
	f.actuator.Drive(0, 0)
}

// Tick runs one control cycle at the given time. It returns false while
// idle. When the controller's rate gate rejects the cycle, the previous
// speed commands are held rather than recomputed.
func (f *Follower) Tick(now time.Time) (Tick, bool) {
	if !f.active {
		return Tick{}, false
	}

	raw := f.sampler.Sample()
	core.NormalizeAll(raw, f.bounds, f.readings)
	position := f.geom.Estimate(f.readings)

	output, st, evaluated := f.params.PID.Step(f.pid, position, now)
	f.pid = st

	if evaluated {
		f.lastOut = output
		f.lastL, f.lastR = core.Mix(f.params.Base, output, f.params.SpeedLimit)
		f.actuator.Drive(f.lastL, f.lastR)
	}

	// Samplers and the normalizer reuse their buffers; the tick carries
	// copies so observers may hold it past the cycle.
	tick := Tick{
		T:         now,
		Raw:       append([]int(nil), raw...),
		Readings:  append([]int(nil), f.readings...),
		Position:  position,
		Output:    f.lastOut,
		Left:      f.lastL,
		Right:     f.lastR,
		Evaluated: evaluated,
	}

	for _, m := range f.metrics {
		m.Observe(tick)
	}
	for _, o := range f.observers {
		o.OnTick(tick)
	}

	return tick, true
}
