// Package core implements the control pipeline of the line follower:
// sensor normalization, line position estimation, a time-compensated PID
// controller and the differential drive mixer. Every function here is
// total; bad inputs degrade to clamped values, never to a panic.
package core

import "github.com/san-kum/linebot/internal/cal"

// Calibrated readings run from ReadingMin at the line extreme to
// ReadingMax at the background extreme. The line is dark on a bright
// surface, so the estimator searches for the minimum reading. Every
// downstream sign (error, which side saturates) assumes this direction.
const (
	ReadingMin = 0
	ReadingMax = 1000
)

// Normalize maps one raw sample onto [ReadingMin, ReadingMax] relative to
// the channel's calibrated extremes and clamps at both ends. Degenerate
// bounds (black == white) return ReadingMin without dividing.
func Normalize(raw int, c cal.Channel) int {
	if c.Black == c.White {
		return ReadingMin
	}
	v := (raw - c.Black) * ReadingMax / (c.White - c.Black)
	if v < ReadingMin {
		return ReadingMin
	}
	if v > ReadingMax {
		return ReadingMax
	}
	return v
}

// NormalizeAll maps a full raw sample array into dst. dst must have the
// same length as raw; extra bounds channels are ignored, missing ones
// leave the reading at ReadingMax (treated as background).
func NormalizeAll(raw []int, b cal.Bounds, dst []int) {
	for i := range raw {
		if i >= len(dst) {
			return
		}
		if i < len(b) {
			dst[i] = Normalize(raw[i], b[i])
		} else {
			dst[i] = ReadingMax
		}
	}
}
