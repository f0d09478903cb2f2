package telemetry

import (
	"math"

	"github.com/san-kum/linebot/internal/follower"
)

// TrackingRMS is the root-mean-square lateral offset over a run.
type TrackingRMS struct {
	name    string
	sumSq   float64
	samples int
}

func NewTrackingRMS() *TrackingRMS {
	return &TrackingRMS{name: "tracking_rms"}
}

func (t *TrackingRMS) Name() string {
	return t.name
}

func (t *TrackingRMS) Observe(tick follower.Tick) {
	t.sumSq += tick.Position * tick.Position
	t.samples++
}

func (t *TrackingRMS) Value() float64 {
	if t.samples == 0 {
		return 0
	}
	return math.Sqrt(t.sumSq / float64(t.samples))
}

func (t *TrackingRMS) Reset() {
	t.sumSq = 0
	t.samples = 0
}

// LineLoss is the fraction of ticks spent with the line off the array,
// reported through the estimator's saturation value.
type LineLoss struct {
	name       string
	saturation float64
	lost       int
	samples    int
}

func NewLineLoss(saturation float64) *LineLoss {
	return &LineLoss{name: "line_loss", saturation: saturation}
}

func (l *LineLoss) Name() string {
	return l.name
}

func (l *LineLoss) Observe(tick follower.Tick) {
	l.samples++
	if math.Abs(tick.Position) >= l.saturation {
		l.lost++
	}
}

func (l *LineLoss) Value() float64 {
	if l.samples == 0 {
		return 0
	}
	return float64(l.lost) / float64(l.samples)
}

func (l *LineLoss) Reset() {
	l.lost = 0
	l.samples = 0
}
