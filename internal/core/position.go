package core

import "math"

// Geometry describes the physical sensor array. Channel 0 sits at the left
// end. Position is the lateral offset of the line from the array center in
// millimeters, positive when the line lies left of center; the steering
// correction -position then slows the left wheel, turning toward the line.
type Geometry struct {
	// Channels is the number of sensor channels. Estimation needs at
	// least 3 for the interpolation window.
	Channels int

	// Pitch is the spacing between adjacent sensor centers in mm.
	Pitch float64

	// FlatCurvature is the |a| threshold below which the local parabola
	// is too flat to trust and the estimate collapses to the extremal
	// channel index. Tuned empirically for a QTR-8A style array.
	FlatCurvature float64
}

// DefaultGeometry matches an 8-channel array with 9.525 mm pitch.
func DefaultGeometry() Geometry {
	return Geometry{Channels: 8, Pitch: 9.525, FlatCurvature: 1e-6}
}

// Saturation is the magnitude of the position reported when the line has
// exited the array: half a channel width beyond the edge channel.
func (g Geometry) Saturation() float64 {
	return float64(g.Channels) / 2 * g.Pitch
}

// center returns the index-space center of the array.
func (g Geometry) center() float64 {
	return float64(g.Channels)/2 - 0.5
}

// Estimate locates the line among the normalized readings and returns its
// lateral offset in mm. The darkest (minimum) channel anchors a 3-tap
// parabolic fit; ties resolve to the lowest index. An extremal edge
// channel means the line has left the array on that side and yields the
// saturation constant for that side with no interpolation.
func (g Geometry) Estimate(readings []int) float64 {
	idx := 0
	for i, v := range readings {
		if v < readings[idx] {
			idx = i
		}
	}

	if idx == 0 {
		return g.Saturation()
	}
	if idx == len(readings)-1 {
		return -g.Saturation()
	}

	s0 := float64(readings[idx])
	sMinus := float64(readings[idx-1])
	sPlus := float64(readings[idx+1])

	b := (sPlus - sMinus) / 2
	a := sPlus - b - s0

	p := float64(idx)
	if math.Abs(a) >= g.FlatCurvature {
		p += -b / (2 * a)
	}

	return (g.center() - p) * g.Pitch
}
