package follower

import (
	"context"
	"fmt"
	"time"
)

// RunConfig drives an offline run on a virtual clock. Poll is the host
// polling interval (usually faster than the controller's cycle period,
// which gates itself).
type RunConfig struct {
	Duration time.Duration
	Poll     time.Duration
}

// Run executes the loop on a virtual clock until the duration elapses or
// the context is canceled. The follower is started if idle and stopped on
// return. If the actuator is a simulated Plant it is advanced by Poll
// after each tick.
func (f *Follower) Run(ctx context.Context, cfg RunConfig) (*Result, error) {
	if cfg.Poll <= 0 {
		return nil, fmt.Errorf("poll interval must be positive, got %v", cfg.Poll)
	}
	if cfg.Duration <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %v", cfg.Duration)
	}

	for _, m := range f.metrics {
		m.Reset()
	}

	f.Start()
	defer f.Stop()

	steps := int(cfg.Duration / cfg.Poll)
	result := &Result{
		Times:     make([]float64, 0, steps),
		Positions: make([]float64, 0, steps),
		Outputs:   make([]float64, 0, steps),
		Left:      make([]int, 0, steps),
		Right:     make([]int, 0, steps),
		Metrics:   make(map[string]float64),
	}

	plant, _ := f.actuator.(Plant)

	now := time.Unix(0, 0)
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		now = now.Add(cfg.Poll)
		tick, _ := f.Tick(now)

		result.Times = append(result.Times, cfg.Poll.Seconds()*float64(i+1))
		result.Positions = append(result.Positions, tick.Position)
		result.Outputs = append(result.Outputs, tick.Output)
		result.Left = append(result.Left, tick.Left)
		result.Right = append(result.Right, tick.Right)

		if plant != nil {
			plant.Advance(cfg.Poll)
		}
	}

	for _, m := range f.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}
