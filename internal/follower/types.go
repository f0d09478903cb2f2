// Package follower runs the control loop: it owns the run/idle state
// machine and composes one tick of work from sampling through actuation.
// All work is strictly sequential; the only carried state is the
// controller memory, reset on every idle/active transition.
package follower

import (
	"time"

	"github.com/san-kum/linebot/internal/core"
)

// Sampler produces one raw reading per physical sensor each tick.
type Sampler interface {
	Sample() []int
}

// Actuator receives the per-wheel speed commands. Sign is direction,
// magnitude is duty.
type Actuator interface {
	Drive(left, right int)
}

// Plant is implemented by simulated actuators that need explicit time
// stepping between ticks.
type Plant interface {
	Advance(dt time.Duration)
}

// Tick is one cycle's worth of pipeline values.
type Tick struct {
	T         time.Time
	Raw       []int
	Readings  []int
	Position  float64
	Output    float64
	Left      int
	Right     int
	Evaluated bool
}

// Observer is notified after every active tick.
type Observer interface {
	OnTick(tick Tick)
}

// Metric accumulates a scalar over a run.
type Metric interface {
	Name() string
	Observe(tick Tick)
	Value() float64
	Reset()
}

// Params are the runtime-tunable inputs read fresh each cycle. The
// command link may replace them between ticks; no transition logic runs
// when they change.
type Params struct {
	PID        core.PIDConfig
	Base       int
	SpeedLimit int
}

// Result collects the trace and metrics of a finished run.
type Result struct {
	Times     []float64
	Positions []float64
	Outputs   []float64
	Left      []int
	Right     []int
	Metrics   map[string]float64
}
