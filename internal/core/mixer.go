package core

import "math"

// Mix combines a base drive power with a steering correction into two
// wheel speed commands, each clamped independently to [-limit, +limit].
// Sign encodes direction, magnitude encodes PWM duty. One wheel may
// saturate while the other does not; that asymmetry is accepted rather
// than renormalized.
func Mix(base int, correction float64, limit int) (left, right int) {
	c := int(math.Round(correction))
	left = clampi(base+c, limit)
	right = clampi(base-c, limit)
	return left, right
}

func clampi(v, limit int) int {
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}
