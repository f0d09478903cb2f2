// Package telemetry provides run metrics over follower ticks.
package telemetry

import (
	"math"

	"github.com/san-kum/linebot/internal/follower"
)

// ControlEffort averages the magnitude of the steering correction.
type ControlEffort struct {
	name    string
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{name: "control_effort"}
}

func (c *ControlEffort) Name() string {
	return c.name
}

func (c *ControlEffort) Observe(tick follower.Tick) {
	c.sum += math.Abs(tick.Output)
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}
