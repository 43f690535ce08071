package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	dn := cfg.DayNight
	if dn.Latitude != 34 {
		t.Errorf("expected latitude 34, got %v", dn.Latitude)
	}
	if dn.AxialTilt != 23.5 {
		t.Errorf("expected axial tilt 23.5, got %v", dn.AxialTilt)
	}
	if dn.TimeOfDay != 6 {
		t.Errorf("expected time of day 6, got %v", dn.TimeOfDay)
	}
	if dn.LengthOfDay != 10 {
		t.Errorf("expected length of day 10, got %v", dn.LengthOfDay)
	}
	if dn.SeasonLength != 5 {
		t.Errorf("expected season length 5, got %v", dn.SeasonLength)
	}
	if dn.SteppedTimeRate != time.Second {
		t.Errorf("expected stepped rate 1s, got %v", dn.SteppedTimeRate)
	}
	if dn.UpdateMode != "continuous" {
		t.Errorf("expected continuous update mode, got %q", dn.UpdateMode)
	}
	if dn.PersistChanges {
		t.Error("expected persist_changes to be false by default")
	}

	if cfg.Loop.FPS != 60 {
		t.Errorf("expected 60 fps, got %d", cfg.Loop.FPS)
	}
	if cfg.Metrics.Addr != "" {
		t.Errorf("expected metrics disabled, got %q", cfg.Metrics.Addr)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, FileName)

	yamlContent := `
day_night:
  latitude: -33.9
  axial_tilt: 10
  time_of_day: 13.5
  length_of_day: 2
  season_length: 3
  stepped_time_rate: 250ms
  update_mode: stepped

loop:
  fps: 30
  max_frames: 900

metrics:
  addr: ":9102"

logging:
  level: "debug"
  log_file: "daynight.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	dn := cfg.DayNight
	if dn.Latitude != -33.9 {
		t.Errorf("expected latitude -33.9, got %v", dn.Latitude)
	}
	if dn.TimeOfDay != 13.5 {
		t.Errorf("expected time of day 13.5, got %v", dn.TimeOfDay)
	}
	if dn.SteppedTimeRate != 250*time.Millisecond {
		t.Errorf("expected stepped rate 250ms, got %v", dn.SteppedTimeRate)
	}
	if dn.UpdateMode != "stepped" {
		t.Errorf("expected stepped mode, got %q", dn.UpdateMode)
	}
	if cfg.Loop.FPS != 30 || cfg.Loop.MaxFrames != 900 {
		t.Errorf("unexpected loop config %+v", cfg.Loop)
	}
	// not in the file, default kept
	if cfg.Loop.StatusInterval != 5*time.Second {
		t.Errorf("expected default status interval, got %v", cfg.Loop.StatusInterval)
	}
	if cfg.Metrics.Addr != ":9102" {
		t.Errorf("expected metrics addr :9102, got %q", cfg.Metrics.Addr)
	}
	if cfg.Logging.LogFile != "daynight.log" {
		t.Errorf("expected log file 'daynight.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
day_night:
  latitude: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/daynight.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SDN_DAY_LENGTH", "0.5")
	t.Setenv("SDN_TIME_STEP", "2s")
	t.Setenv("SDN_UPDATE_MODE", "stepped")
	t.Setenv("SDN_METRICS_ADDR", "127.0.0.1:9000")
	t.Setenv("SDN_TRACING", "true")

	cfg := Default()
	if err := loadFromEnv(cfg); err != nil {
		t.Fatalf("loadFromEnv: %v", err)
	}

	if cfg.DayNight.LengthOfDay != 0.5 {
		t.Errorf("expected length of day 0.5, got %v", cfg.DayNight.LengthOfDay)
	}
	if cfg.DayNight.SteppedTimeRate != 2*time.Second {
		t.Errorf("expected stepped rate 2s, got %v", cfg.DayNight.SteppedTimeRate)
	}
	if cfg.DayNight.UpdateMode != "stepped" {
		t.Errorf("expected stepped mode, got %q", cfg.DayNight.UpdateMode)
	}
	if cfg.Metrics.Addr != "127.0.0.1:9000" {
		t.Errorf("expected metrics addr from env, got %q", cfg.Metrics.Addr)
	}
	if !cfg.Tracing.Enabled {
		t.Error("expected tracing enabled from env")
	}
	// untouched by env
	if cfg.DayNight.Latitude != 34 {
		t.Errorf("expected default latitude, got %v", cfg.DayNight.Latitude)
	}
}

func TestLoadFromEnvInvalid(t *testing.T) {
	t.Setenv("SDN_SEASON_LENGTH", "long")

	if err := loadFromEnv(Default()); err == nil {
		t.Error("expected error for non-numeric SDN_SEASON_LENGTH")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, FileName)
	if err := os.WriteFile(configPath, []byte("day_night:\n  latitude: 10\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Errorf("expected to find %s in current directory", FileName)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "mode flag",
			setup: func() { *flagMode = "stepped" },
			verify: func(cfg *Config) {
				if cfg.DayNight.UpdateMode != "stepped" {
					t.Errorf("expected stepped mode, got %q", cfg.DayNight.UpdateMode)
				}
			},
			teardown: func() { *flagMode = "" },
		},
		{
			name:  "time of day zero is honoured",
			setup: func() { *flagTimeOfDay = 0 },
			verify: func(cfg *Config) {
				if cfg.DayNight.TimeOfDay != 0 {
					t.Errorf("expected midnight, got %v", cfg.DayNight.TimeOfDay)
				}
			},
			teardown: func() { *flagTimeOfDay = math.NaN() },
		},
		{
			name:  "latitude flag",
			setup: func() { *flagLatitude = -45 },
			verify: func(cfg *Config) {
				if cfg.DayNight.Latitude != -45 {
					t.Errorf("expected latitude -45, got %v", cfg.DayNight.Latitude)
				}
			},
			teardown: func() { *flagLatitude = math.NaN() },
		},
		{
			name: "loop flags",
			setup: func() {
				*flagFPS = 144
				*flagFrames = 10
			},
			verify: func(cfg *Config) {
				if cfg.Loop.FPS != 144 || cfg.Loop.MaxFrames != 10 {
					t.Errorf("unexpected loop config %+v", cfg.Loop)
				}
			},
			teardown: func() {
				*flagFPS = 0
				*flagFrames = 0
			},
		},
		{
			name:  "unset flags keep defaults",
			setup: func() {},
			verify: func(cfg *Config) {
				if *cfg != *Default() {
					t.Errorf("expected defaults, got %+v", cfg)
				}
			},
			teardown: func() {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)

			tt.verify(cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, FileName)

	yamlContent := `
day_night:
  length_of_day: 20
  season_length: 8
  latitude: 50
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagDayLength = 15
	defer func() {
		*flagConfig = ""
		*flagDayLength = 0
	}()
	t.Setenv("SDN_SEASON_LENGTH", "12")
	t.Setenv("SDN_DAY_LENGTH", "18")

	cfg, path, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if path != configPath {
		t.Errorf("expected path %s, got %s", configPath, path)
	}

	// flag beats env beats file
	if cfg.DayNight.LengthOfDay != 15 {
		t.Errorf("expected length of day 15 from flag, got %v", cfg.DayNight.LengthOfDay)
	}
	// env beats file
	if cfg.DayNight.SeasonLength != 12 {
		t.Errorf("expected season length 12 from env, got %v", cfg.DayNight.SeasonLength)
	}
	// file only
	if cfg.DayNight.Latitude != 50 {
		t.Errorf("expected latitude 50 from file, got %v", cfg.DayNight.Latitude)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)

	cfg := Default()
	cfg.DayNight.UpdateMode = "stepped"
	cfg.DayNight.SteppedTimeRate = 1500 * time.Millisecond
	cfg.DayNight.SeasonLength = 7

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temporary file left behind: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loading saved config: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("saved config differs:\n got %+v\nwant %+v", loaded, cfg)
	}
}
