// Package config handles animplay configuration loading and management.
package config

import (
	"fmt"
	"time"

	"github.com/Faultbox/midgard-anim/pkg/anim"
)

// Config holds all animplay settings.
type Config struct {
	Playback PlaybackConfig `yaml:"playback"`
	Skeleton SkeletonConfig `yaml:"skeleton"`
	Rig      RigConfig      `yaml:"rig"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// PlaybackConfig holds sequencer settings.
type PlaybackConfig struct {
	Policy       string        `yaml:"policy"`        // once, loop or pingpong
	TickInterval time.Duration `yaml:"tick_interval"` // Background step period
	RunFor       time.Duration `yaml:"run_for"`       // 0 runs until interrupted
}

// SkeletonConfig holds pose application settings.
type SkeletonConfig struct {
	ShowBindPose bool `yaml:"show_bind_pose"`

	// DepthLimit is passed to Apply as is: joints deeper than it are left
	// undeformed and a negative value leaves the whole tree undeformed.
	// Unset animates the whole tree.
	DepthLimit *int `yaml:"depth_limit,omitempty"`
}

// RigConfig points at the rig file to play.
type RigConfig struct {
	Path string `yaml:"path"`
}

// MetricsConfig holds the Prometheus endpoint settings.
type MetricsConfig struct {
	Addr string `yaml:"addr"` // Empty disables the endpoint
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Playback: PlaybackConfig{
			Policy:       anim.PolicyLoop.String(),
			TickInterval: anim.DefaultTickInterval,
			RunFor:       0,
		},
		Skeleton: SkeletonConfig{
			ShowBindPose: false,
			DepthLimit:   nil,
		},
		Rig: RigConfig{
			Path: "rig.yaml",
		},
		Metrics: MetricsConfig{
			Addr: "",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// ParsePolicy returns the configured playback policy.
func (c *Config) ParsePolicy() (anim.Policy, error) {
	return anim.ParsePolicy(c.Playback.Policy)
}

// EffectiveDepthLimit returns the depth limit to pass to Apply, or
// anim.NoDepthLimit when none is configured.
func (c *Config) EffectiveDepthLimit() int {
	if c.Skeleton.DepthLimit == nil {
		return anim.NoDepthLimit
	}
	return *c.Skeleton.DepthLimit
}

// Validate checks settings that would otherwise fail later.
func (c *Config) Validate() error {
	if _, err := c.ParsePolicy(); err != nil {
		return err
	}
	if c.Playback.TickInterval < 0 {
		return fmt.Errorf("playback.tick_interval must not be negative, got %v", c.Playback.TickInterval)
	}
	if c.Playback.RunFor < 0 {
		return fmt.Errorf("playback.run_for must not be negative, got %v", c.Playback.RunFor)
	}
	if c.Rig.Path == "" {
		return fmt.Errorf("rig.path is required")
	}
	return nil
}
