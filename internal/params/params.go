// Package params holds the live sky parameters. The store is the single source
// of truth: consumers read point-in-time snapshots and subscribe to changes.
package params

import (
	"strings"
	"time"

	"github.com/Faultbox/midgard-daynight/internal/config"
)

// UpdateMode selects how often the sun orientation is recomputed. It is a raw
// string so that unrecognised values survive until the scheduler rejects them.
type UpdateMode string

const (
	// Continuous recomputes the sun every frame.
	Continuous UpdateMode = "continuous"
	// Stepped recomputes the sun on a timer.
	Stepped UpdateMode = "stepped"
)

// Valid reports whether m is a known mode.
func (m UpdateMode) Valid() bool {
	return m == Continuous || m == Stepped
}

// ParseUpdateMode normalises user input. "smooth" and "1" mean continuous,
// "0" means stepped, matching the sdn.SmoothTime console variable.
func ParseUpdateMode(s string) UpdateMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "continuous", "smooth", "1", "true":
		return Continuous
	case "stepped", "step", "0", "false":
		return Stepped
	default:
		return UpdateMode(s)
	}
}

// Snapshot is a consistent copy of every parameter at one point in time.
type Snapshot struct {
	Latitude        float64
	AxialTilt       float64
	LengthOfDay     float64 // real minutes per in-game day
	SeasonLength    float64 // in-game days per quarter season
	SteppedTimeRate time.Duration
	UpdateMode      UpdateMode
}

// FromConfig builds a snapshot from the day/night config section.
func FromConfig(c config.DayNightConfig) Snapshot {
	return Snapshot{
		Latitude:        c.Latitude,
		AxialTilt:       c.AxialTilt,
		LengthOfDay:     c.LengthOfDay,
		SeasonLength:    c.SeasonLength,
		SteppedTimeRate: c.SteppedTimeRate,
		UpdateMode:      ParseUpdateMode(c.UpdateMode),
	}
}

// ApplyTo copies the snapshot into a config section, leaving fields the store
// does not own (start time, persistence flag) untouched.
func (s Snapshot) ApplyTo(c *config.DayNightConfig) {
	c.Latitude = s.Latitude
	c.AxialTilt = s.AxialTilt
	c.LengthOfDay = s.LengthOfDay
	c.SeasonLength = s.SeasonLength
	c.SteppedTimeRate = s.SteppedTimeRate
	c.UpdateMode = string(s.UpdateMode)
}
