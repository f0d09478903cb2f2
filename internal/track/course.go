// Package track simulates the plant: a line course, a differential-drive
// robot and its reflectance sensor array, so the full control loop runs
// without hardware.
package track

import (
	"fmt"
	"math"
	"sort"
)

// Course gives the lateral offset of the line centerline, in mm, as a
// function of distance traveled along the course in mm. Positive offsets
// move the line to the robot's left.
type Course struct {
	Name   string
	Offset func(d float64) float64
}

var courses = map[string]Course{
	"straight": {
		Name:   "straight",
		Offset: func(d float64) float64 { return 0 },
	},
	"scurve": {
		Name: "scurve",
		Offset: func(d float64) float64 {
			return 25 * math.Sin(2*math.Pi*d/1200)
		},
	},
	"slalom": {
		Name: "slalom",
		Offset: func(d float64) float64 {
			return 15 * math.Sin(2*math.Pi*d/400)
		},
	},
	"step": {
		Name: "step",
		Offset: func(d float64) float64 {
			if d < 300 {
				return 0
			}
			return 18
		},
	},
}

// ByName returns a preset course.
func ByName(name string) (Course, error) {
	c, ok := courses[name]
	if !ok {
		return Course{}, fmt.Errorf("unknown course: %s (available: %v)", name, Courses())
	}
	return c, nil
}

// Courses lists the preset names in stable order.
func Courses() []string {
	names := make([]string, 0, len(courses))
	for name := range courses {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
