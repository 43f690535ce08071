package config

import (
	"flag"
	"math"
)

var (
	flagConfig      = flag.String("config", "", "Path to config file")
	flagDebug       = flag.Bool("debug", false, "Enable debug logging")
	flagMode        = flag.String("mode", "", "Sun update mode: continuous or stepped")
	flagTimeOfDay   = flag.Float64("time-of-day", math.NaN(), "Start time of day in hours")
	flagDayLength   = flag.Float64("day-length", 0, "Real-time minutes per in-game day")
	flagLatitude    = flag.Float64("latitude", math.NaN(), "Latitude of the level in degrees")
	flagFPS         = flag.Int("fps", 0, "Host frame rate")
	flagFrames      = flag.Int("frames", 0, "Stop after this many frames")
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
	if *flagMode != "" {
		cfg.DayNight.UpdateMode = *flagMode
	}
	if !math.IsNaN(*flagTimeOfDay) {
		cfg.DayNight.TimeOfDay = *flagTimeOfDay
	}
	if *flagDayLength > 0 {
		cfg.DayNight.LengthOfDay = *flagDayLength
	}
	if !math.IsNaN(*flagLatitude) {
		cfg.DayNight.Latitude = *flagLatitude
	}
	if *flagFPS > 0 {
		cfg.Loop.FPS = *flagFPS
	}
	if *flagFrames > 0 {
		cfg.Loop.MaxFrames = *flagFrames
	}
	if *flagMetricsAddr != "" {
		cfg.Metrics.Addr = *flagMetricsAddr
	}
}
