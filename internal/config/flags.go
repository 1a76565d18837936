package config

import (
	"flag"
	"time"
)

var (
	flagConfig      = flag.String("config", "", "Path to config file")
	flagDebug       = flag.Bool("debug", false, "Enable debug logging (logs skinning matrices every step)")
	flagRig         = flag.String("rig", "", "Path to rig file")
	flagPolicy      = flag.String("policy", "", "Playback policy: once, loop or pingpong")
	flagBindPose    = flag.Bool("bind-pose", false, "Show the bind pose instead of the animation")
	flagRunFor      = flag.Duration("run-for", 0, "Stop after this long (0 runs until interrupted)")
	flagMetricsAddr = flag.String("metrics-addr", "", "Serve Prometheus metrics on this address")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagRig != "" {
		cfg.Rig.Path = *flagRig
	}
	if *flagPolicy != "" {
		cfg.Playback.Policy = *flagPolicy
	}
	if *flagBindPose {
		cfg.Skeleton.ShowBindPose = true
	}
	if *flagRunFor > time.Duration(0) {
		cfg.Playback.RunFor = *flagRunFor
	}
	if *flagMetricsAddr != "" {
		cfg.Metrics.Addr = *flagMetricsAddr
	}
}
