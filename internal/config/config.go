// Package config defines the CLI configuration and its layered loading.
package config

import (
	"errors"
	"fmt"

	"github.com/pable/go-rl-metrics/internal/aggregator"
)

// Points weights the scoreboard events of the points score.
type Points struct {
	Goal   int `koanf:"goal"`
	Assist int `koanf:"assist"`
	Save   int `koanf:"save"`
	Shot   int `koanf:"shot"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// DBPath is the SQLite database location. Empty means the default under the home dir.
	DBPath string `koanf:"db_path"`

	// MetricsTextfile, when set, receives the pipeline counters after each parse.
	MetricsTextfile string `koanf:"metrics_textfile"`

	KickoffDelaySeconds   int       `koanf:"kickoff_delay_seconds"`
	OpeningKickoffSecond  int       `koanf:"opening_kickoff_second"`
	OvertimeKickoffSecond int       `koanf:"overtime_kickoff_second"`
	ZoneThreshold         float64   `koanf:"zone_threshold"`
	HeightBounds          []float64 `koanf:"height_bounds"`
	Points                Points    `koanf:"points"`

	// AnalyzeModel is the model used by the analyze command.
	AnalyzeModel string `koanf:"analyze_model"`
}

// New returns a Config holding the defaults.
func New() *Config {
	d := aggregator.DefaultConfig()
	return &Config{
		LogLevel:              "info",
		KickoffDelaySeconds:   d.KickoffDelay,
		OpeningKickoffSecond:  d.OpeningKickoffSecond,
		OvertimeKickoffSecond: d.OvertimeKickoffSecond,
		ZoneThreshold:         d.ZoneThreshold,
		HeightBounds:          d.HeightBounds[:],
		Points: Points{
			Goal:   d.Points.Goal,
			Assist: d.Points.Assist,
			Save:   d.Points.Save,
			Shot:   d.Points.Shot,
		},
		AnalyzeModel: "claude-haiku-4-5-20251001",
	}
}

// Validate checks the analysis constants.
func (c *Config) Validate() error {
	if len(c.HeightBounds) != 3 {
		return fmt.Errorf("height_bounds: want 3 values, got %d", len(c.HeightBounds))
	}
	if c.HeightBounds[0] > c.HeightBounds[1] || c.HeightBounds[1] > c.HeightBounds[2] {
		return fmt.Errorf("height_bounds: must be ascending, got %v", c.HeightBounds)
	}
	if c.ZoneThreshold <= 0 {
		return errors.New("zone_threshold must be positive")
	}
	if c.KickoffDelaySeconds < 0 {
		return errors.New("kickoff_delay_seconds must not be negative")
	}
	return nil
}

// Analysis returns the aggregator constants described by the config.
func (c *Config) Analysis() aggregator.Config {
	out := aggregator.Config{
		KickoffDelay:          c.KickoffDelaySeconds,
		OpeningKickoffSecond:  c.OpeningKickoffSecond,
		OvertimeKickoffSecond: c.OvertimeKickoffSecond,
		ZoneThreshold:         c.ZoneThreshold,
		Points: aggregator.PointsConfig{
			Goal:   c.Points.Goal,
			Assist: c.Points.Assist,
			Save:   c.Points.Save,
			Shot:   c.Points.Shot,
		},
	}
	copy(out.HeightBounds[:], c.HeightBounds)
	return out
}
