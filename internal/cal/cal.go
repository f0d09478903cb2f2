// Package cal holds per-channel reflectance calibration: the extreme raw
// readings observed over the line and over the background. Bounds are
// collected once by sweeping the array across the line and are read-only
// during normal operation.
package cal

import (
	"encoding/json"
	"fmt"
	"os"
)

// Channel stores the raw extremes for one sensor channel. The line is dark,
// and dark surfaces reflect less, so Black is the highest raw reading seen
// and White the lowest.
type Channel struct {
	Black int `json:"black"`
	White int `json:"white"`
}

// Degenerate reports whether the channel never saw two distinct readings.
func (c Channel) Degenerate() bool {
	return c.Black == c.White
}

// Bounds is one Channel per physical sensor, in array order.
type Bounds []Channel

// Degenerate returns the indices of channels with collapsed bounds.
func (b Bounds) Degenerate() []int {
	var bad []int
	for i, c := range b {
		if c.Degenerate() {
			bad = append(bad, i)
		}
	}
	return bad
}

// Load reads bounds from a JSON file.
func Load(path string) (Bounds, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read calibration file: %w", err)
	}
	var b Bounds
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse calibration JSON: %w", err)
	}
	return b, nil
}

// Save writes bounds to a JSON file.
func Save(path string, b Bounds) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
