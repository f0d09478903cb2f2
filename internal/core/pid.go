package core

import "time"

// PIDConfig holds the controller tuning. It is passed by value into every
// evaluation; the command link may swap gains between cycles and the new
// values simply apply on the next evaluation.
type PIDConfig struct {
	Kp float64
	Ki float64
	Kd float64

	// CyclePeriod is the minimum elapsed time between evaluations. The
	// polling loop may run faster; evaluations are gated on the wall
	// clock, not on iteration count.
	CyclePeriod time.Duration

	// Limit bounds both the integral accumulator and the final output to
	// [-Limit, +Limit].
	Limit float64
}

// PIDState is the controller memory carried between evaluations. The zero
// value is the cold state; the follower resets to it on every idle/active
// transition so a stopped run never leaks into the next one.
type PIDState struct {
	Integral float64
	PrevErr  float64
	LastEval time.Time
	primed   bool
}

// Step evaluates the controller against a position estimate. It returns
// the steering correction, the updated state, and whether an evaluation
// actually happened. Less than CyclePeriod since the last evaluation means
// no evaluation: the state passes through untouched and the caller holds
// its previous output.
//
// The first call after a reset primes the clock and previous error and
// contributes the proportional term only.
func (c PIDConfig) Step(st PIDState, position float64, now time.Time) (float64, PIDState, bool) {
	err := -position

	if !st.primed {
		st.primed = true
		st.LastEval = now
		st.PrevErr = err
		return clampf(c.Kp*err, c.Limit), st, true
	}

	elapsed := now.Sub(st.LastEval)
	if elapsed < c.CyclePeriod {
		return 0, st, false
	}
	dt := elapsed.Seconds()

	p := c.Kp * err

	st.Integral += c.Ki * err * dt
	st.Integral = clampf(st.Integral, c.Limit)

	// Time-normalized derivative. dt is gated above CyclePeriod so this
	// never divides by zero; a small dt still amplifies sensor noise,
	// which is the accepted cost of time compensation.
	d := c.Kd * (err - st.PrevErr) / dt

	st.PrevErr = err
	st.LastEval = now

	return clampf(p+st.Integral+d, c.Limit), st, true
}

func clampf(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}
