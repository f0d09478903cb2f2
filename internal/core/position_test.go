package core

import (
	"math"
	"testing"
)

func TestEstimateBoundarySaturation(t *testing.T) {
	g := DefaultGeometry()

	left := []int{0, 500, 900, 1000, 1000, 1000, 1000, 1000}
	if pos := g.Estimate(left); pos != g.Saturation() {
		t.Errorf("extremal edge channel 0: expected %f, got %f", g.Saturation(), pos)
	}

	right := []int{1000, 1000, 1000, 1000, 1000, 900, 500, 0}
	if pos := g.Estimate(right); pos != -g.Saturation() {
		t.Errorf("extremal edge channel 7: expected %f, got %f", -g.Saturation(), pos)
	}

	// Saturation ignores the interior channel values entirely.
	noisy := []int{0, 123, 77, 910, 404, 1000, 3, 808}
	if pos := g.Estimate(noisy); pos != g.Saturation() {
		t.Errorf("edge saturation should not depend on interior channels, got %f", pos)
	}
}

func TestEstimateCentered(t *testing.T) {
	g := DefaultGeometry()

	// Line exactly between channels 3 and 4: equal minima tie-break to 3,
	// and the parabola lands halfway past it.
	readings := []int{1000, 1000, 800, 0, 0, 800, 1000, 1000}
	pos := g.Estimate(readings)
	if math.Abs(pos) > 1e-9 {
		t.Errorf("centered line should estimate ~0, got %f", pos)
	}
}

func TestEstimateExactChannel(t *testing.T) {
	g := DefaultGeometry()

	// Line dead on channel 2 with symmetric neighbors: b is zero, so the
	// position is the channel's own offset from center.
	readings := []int{1000, 600, 0, 600, 1000, 1000, 1000, 1000}
	want := (g.center() - 2) * g.Pitch
	pos := g.Estimate(readings)
	if math.Abs(pos-want) > 1e-9 {
		t.Errorf("expected %f, got %f", want, pos)
	}
}

func TestEstimateTieBreakLowestIndex(t *testing.T) {
	g := DefaultGeometry()

	// Indices 2 and 3 tie; the anchor must be 2. With s+ == s0 the
	// parabola pulls exactly halfway toward index 3, which is only
	// observable if the lower index won.
	readings := []int{1000, 700, 300, 300, 700, 1000, 1000, 1000}
	want := (g.center() - 2.5) * g.Pitch
	pos := g.Estimate(readings)
	if math.Abs(pos-want) > 1e-9 {
		t.Errorf("tie should anchor at lowest index: expected %f, got %f", want, pos)
	}
}

func TestEstimateFlatCurvatureFallback(t *testing.T) {
	// With integer readings and lowest-index tie-break the curvature of
	// an interior minimum is at least 0.5, so the fallback is exercised
	// through the configurable threshold.
	g := DefaultGeometry()
	g.FlatCurvature = 1.0

	// idx 3: s-=301, s+=300 -> b=-0.5, a=0.5 < threshold.
	readings := []int{1000, 900, 301, 300, 300, 1000, 1000, 1000}
	want := (g.center() - 3) * g.Pitch
	pos := g.Estimate(readings)
	if math.Abs(pos-want) > 1e-9 {
		t.Errorf("flat curvature should collapse to the integer index: expected %f, got %f", want, pos)
	}
}

func TestEstimateContinuityAwayFromWindow(t *testing.T) {
	g := DefaultGeometry()

	base := []int{1000, 900, 200, 100, 300, 950, 1000, 1000}
	ref := g.Estimate(base)

	// Perturbing channels outside the 3-tap window never moves the
	// estimate.
	for _, i := range []int{0, 1, 5, 6, 7} {
		mod := make([]int, len(base))
		copy(mod, base)
		mod[i] += 40
		if pos := g.Estimate(mod); pos != ref {
			t.Errorf("perturbing channel %d changed estimate from %f to %f", i, ref, pos)
		}
	}
}

func TestEstimateTotality(t *testing.T) {
	g := DefaultGeometry()

	// Pathological arrays must still produce a finite value.
	cases := [][]int{
		{0, 0, 0, 0, 0, 0, 0, 0},
		{1000, 1000, 1000, 1000, 1000, 1000, 1000, 1000},
		{500, 500, 500, 500, 500, 500, 500, 500},
	}
	for _, readings := range cases {
		pos := g.Estimate(readings)
		if math.IsNaN(pos) || math.IsInf(pos, 0) {
			t.Errorf("estimate not finite for %v: %f", readings, pos)
		}
	}
}
