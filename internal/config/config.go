// Package config handles day/night configuration loading and persistence.
package config

import "time"

// Config holds all host settings.
type Config struct {
	DayNight DayNightConfig `yaml:"day_night"`
	Loop     LoopConfig     `yaml:"loop"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Tracing  TracingConfig  `yaml:"tracing"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DayNightConfig holds the sky parameters. The env names follow the sdn.*
// console variables.
type DayNightConfig struct {
	// Latitude of the level. Positive for the northern hemisphere.
	Latitude float64 `yaml:"latitude" env:"SDN_LATITUDE"`
	// AxialTilt of the planet off the ecliptic, degrees. Earth is 23.5.
	AxialTilt float64 `yaml:"axial_tilt" env:"SDN_AXIAL_TILT"`
	// TimeOfDay at start, hours on a 24h clock.
	TimeOfDay float64 `yaml:"time_of_day" env:"SDN_TIME_OF_DAY"`
	// LengthOfDay is real-time minutes per 24 in-game hours.
	LengthOfDay float64 `yaml:"length_of_day" env:"SDN_DAY_LENGTH"`
	// SeasonLength is in-game days between a solstice and the next equinox.
	SeasonLength float64 `yaml:"season_length" env:"SDN_SEASON_LENGTH"`
	// SteppedTimeRate is the delay between sun updates in stepped mode.
	SteppedTimeRate time.Duration `yaml:"stepped_time_rate" env:"SDN_TIME_STEP"`
	// UpdateMode is "continuous" or "stepped".
	UpdateMode string `yaml:"update_mode" env:"SDN_UPDATE_MODE"`
	// PersistChanges writes live parameter changes back to the config file.
	PersistChanges bool `yaml:"persist_changes" env:"SDN_PERSIST"`
}

// LoopConfig holds host frame loop settings.
type LoopConfig struct {
	FPS            int           `yaml:"fps" env:"SDN_FPS"`
	MaxFrames      int           `yaml:"max_frames" env:"SDN_MAX_FRAMES"` // 0 runs until interrupted
	StatusInterval time.Duration `yaml:"status_interval" env:"SDN_STATUS_INTERVAL"`
}

// MetricsConfig holds the Prometheus endpoint settings.
type MetricsConfig struct {
	Addr string `yaml:"addr" env:"SDN_METRICS_ADDR"` // empty disables the endpoint
}

// TracingConfig holds OpenTelemetry span export settings.
type TracingConfig struct {
	Enabled bool   `yaml:"enabled" env:"SDN_TRACING"`
	File    string `yaml:"file" env:"SDN_TRACE_FILE"` // empty writes to stderr
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" env:"SDN_LOG_LEVEL"`
	LogFile string `yaml:"log_file" env:"SDN_LOG_FILE"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		DayNight: DayNightConfig{
			Latitude:        34,
			AxialTilt:       23.5,
			TimeOfDay:       6,
			LengthOfDay:     10,
			SeasonLength:    5,
			SteppedTimeRate: time.Second,
			UpdateMode:      "continuous",
		},
		Loop: LoopConfig{
			FPS:            60,
			MaxFrames:      0,
			StatusInterval: 5 * time.Second,
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
