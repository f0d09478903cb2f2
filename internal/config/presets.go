package config

import "sort"

var Presets = map[string]*Config{
	"gentle": {
		Array:  ArrayConfig{Channels: 8, Pitch: 9.525, FlatCurvature: 1e-6},
		Gains:  GainsConfig{Kp: 2.0, Ki: 0.2, Kd: 0.8, CycleMs: 10, Limit: 100},
		Drive:  DriveConfig{Base: 50, SpeedLimit: 255},
		Course: "scurve", Duration: 15, Noise: 6,
	},
	"standard": {
		Array:  ArrayConfig{Channels: 8, Pitch: 9.525, FlatCurvature: 1e-6},
		Gains:  GainsConfig{Kp: 3.5, Ki: 0.5, Kd: 1.2, CycleMs: 10, Limit: 100},
		Drive:  DriveConfig{Base: 70, SpeedLimit: 255},
		Course: "scurve", Duration: 10, Noise: 6,
	},
	"sprint": {
		Array:  ArrayConfig{Channels: 8, Pitch: 9.525, FlatCurvature: 1e-6},
		Gains:  GainsConfig{Kp: 5.0, Ki: 0.8, Kd: 1.6, CycleMs: 5, Limit: 120},
		Drive:  DriveConfig{Base: 110, SpeedLimit: 255},
		Course: "slalom", Duration: 10, Noise: 6,
	},
}

// GetPreset returns a copy of a named preset, or nil if unknown.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *p
	return &c
}

// ListPresets returns the preset names sorted.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
