// Package config loads and saves follower configuration.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/linebot/internal/core"
	"github.com/san-kum/linebot/internal/follower"
)

const (
	DefaultChannels   = 8
	DefaultPitch      = 9.525
	DefaultKp         = 3.5
	DefaultKi         = 0.5
	DefaultKd         = 1.2
	DefaultCycleMs    = 10
	DefaultBase       = 70
	DefaultSpeedLimit = 255
	DefaultOutput     = 100.0
	DefaultDuration   = 10.0
	DefaultNoise      = 6.0
)

type Config struct {
	Array    ArrayConfig `yaml:"array"`
	Gains    GainsConfig `yaml:"gains"`
	Drive    DriveConfig `yaml:"drive"`
	Course   string      `yaml:"course"`
	Duration float64     `yaml:"duration"`
	Noise    float64     `yaml:"noise"`
	Seed     int64       `yaml:"seed"`
	CalFile  string      `yaml:"cal_file"`
}

type ArrayConfig struct {
	Channels      int     `yaml:"channels"`
	Pitch         float64 `yaml:"pitch_mm"`
	FlatCurvature float64 `yaml:"flat_curvature"`
}

type GainsConfig struct {
	Kp      float64 `yaml:"kp"`
	Ki      float64 `yaml:"ki"`
	Kd      float64 `yaml:"kd"`
	CycleMs float64 `yaml:"cycle_ms"`
	Limit   float64 `yaml:"limit"`
}

type DriveConfig struct {
	Base       int `yaml:"base"`
	SpeedLimit int `yaml:"speed_limit"`
}

func DefaultConfig() *Config {
	return &Config{
		Array: ArrayConfig{
			Channels:      DefaultChannels,
			Pitch:         DefaultPitch,
			FlatCurvature: 1e-6,
		},
		Gains: GainsConfig{
			Kp:      DefaultKp,
			Ki:      DefaultKi,
			Kd:      DefaultKd,
			CycleMs: DefaultCycleMs,
			Limit:   DefaultOutput,
		},
		Drive: DriveConfig{
			Base:       DefaultBase,
			SpeedLimit: DefaultSpeedLimit,
		},
		Course:   "scurve",
		Duration: DefaultDuration,
		Noise:    DefaultNoise,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Geometry builds the estimator geometry from the array section.
func (c *Config) Geometry() core.Geometry {
	return core.Geometry{
		Channels:      c.Array.Channels,
		Pitch:         c.Array.Pitch,
		FlatCurvature: c.Array.FlatCurvature,
	}
}

// FollowerParams builds the runtime tunables from the gains and drive
// sections.
func (c *Config) FollowerParams() follower.Params {
	return follower.Params{
		PID: core.PIDConfig{
			Kp:          c.Gains.Kp,
			Ki:          c.Gains.Ki,
			Kd:          c.Gains.Kd,
			CyclePeriod: time.Duration(c.Gains.CycleMs * float64(time.Millisecond)),
			Limit:       c.Gains.Limit,
		},
		Base:       c.Drive.Base,
		SpeedLimit: c.Drive.SpeedLimit,
	}
}
