package track

import (
	"math"
	"math/rand"
	"time"

	"github.com/san-kum/linebot/internal/cal"
	"github.com/san-kum/linebot/internal/core"
)

// Raw sensor model. The line is dark: readings rise toward rawLine over
// the line and fall toward rawBackground over open floor, with the
// profile of the line approximated as a gaussian across the array.
const (
	rawBackground = 100
	rawLine       = 880
	rawCeiling    = 1023
)

// Simulator couples the course, robot kinematics and sensor array. It
// implements follower.Sampler, follower.Actuator and follower.Plant.
type Simulator struct {
	geom   core.Geometry
	course Course
	rng    *rand.Rand

	// Noise is the raw-count standard deviation added per channel.
	Noise float64

	// LineHalfWidth is the gaussian half-width of the line profile in mm.
	LineHalfWidth float64

	// MaxSpeed is the wheel surface speed in mm/s at full command.
	MaxSpeed float64

	// WheelBase is the distance between the wheels in mm.
	WheelBase float64

	distance float64
	lateral  float64
	heading  float64

	left, right int
	raw         []int
}

func NewSimulator(geom core.Geometry, course Course, seed int64) *Simulator {
	return &Simulator{
		geom:          geom,
		course:        course,
		rng:           rand.New(rand.NewSource(seed)),
		Noise:         6,
		LineHalfWidth: 12,
		MaxSpeed:      500,
		WheelBase:     90,
		raw:           make([]int, geom.Channels),
	}
}

// Lateral is the robot's offset from the course origin in mm.
func (s *Simulator) Lateral() float64 { return s.lateral }

// Distance is how far the robot has traveled along the course in mm.
func (s *Simulator) Distance() float64 { return s.distance }

// LineOffset is the line position relative to the robot center, positive
// when the line lies to the robot's left.
func (s *Simulator) LineOffset() float64 {
	return s.course.Offset(s.distance) - s.lateral
}

// SetLateral places the robot sideways, used by calibration sweeps and
// tests.
func (s *Simulator) SetLateral(mm float64) { s.lateral = mm }

// Sample produces one raw reading per channel for the current pose.
func (s *Simulator) Sample() []int {
	rel := s.LineOffset()
	center := float64(s.geom.Channels)/2 - 0.5

	for i := range s.raw {
		chanOff := (center - float64(i)) * s.geom.Pitch
		x := (chanOff - rel) / s.LineHalfWidth
		darkness := math.Exp(-x * x)

		v := rawBackground + (rawLine-rawBackground)*darkness
		if s.Noise > 0 {
			v += s.rng.NormFloat64() * s.Noise
		}

		s.raw[i] = clampRaw(int(math.Round(v)))
	}
	return s.raw
}

// Drive stores the wheel commands; Advance applies them.
func (s *Simulator) Drive(left, right int) {
	s.left, s.right = left, right
}

// Advance integrates the unicycle model over dt.
func (s *Simulator) Advance(dt time.Duration) {
	step := dt.Seconds()
	scale := s.MaxSpeed / 255

	vl := float64(s.left) * scale
	vr := float64(s.right) * scale

	v := (vl + vr) / 2
	w := (vr - vl) / s.WheelBase

	s.heading += w * step
	// The sensor boom hits the floor well before the robot can spin in
	// place; cap the heading to keep the small-angle model honest.
	if s.heading > 1.2 {
		s.heading = 1.2
	}
	if s.heading < -1.2 {
		s.heading = -1.2
	}

	s.distance += v * math.Cos(s.heading) * step
	s.lateral += v * math.Sin(s.heading) * step
}

// SweepCalibration runs a simulated calibration pass: the array slides
// across the line and back while an observer accumulates extremes.
func (s *Simulator) SweepCalibration(samples int) cal.Bounds {
	obs := cal.NewObserver(s.geom.Channels)
	saved := s.lateral

	span := s.geom.Saturation() + 2*s.geom.Pitch
	for i := 0; i < samples; i++ {
		frac := float64(i) / float64(samples-1)
		s.lateral = -span + 2*span*frac
		obs.Observe(s.Sample())
	}

	s.lateral = saved
	return obs.Bounds()
}

// IdealBounds returns the noise-free calibration extremes of the sensor
// model, for runs that skip the sweep.
func IdealBounds(channels int) cal.Bounds {
	b := make(cal.Bounds, channels)
	for i := range b {
		b[i] = cal.Channel{Black: rawLine, White: rawBackground}
	}
	return b
}

func clampRaw(v int) int {
	if v < 0 {
		return 0
	}
	if v > rawCeiling {
		return rawCeiling
	}
	return v
}
