package daynight

import (
	"errors"
	"fmt"
	gomath "math"
	"time"

	"github.com/Faultbox/midgard-daynight/internal/params"
)

// Fallbacks substituted for invalid parameters.
const (
	DefaultLengthOfDay     = 10.0
	DefaultSteppedTimeRate = time.Second
	// FrozenSeasonLength is long enough that the seasonal terms stay at their
	// day 0 values for any realistic session.
	FrozenSeasonLength = 1e9
	// MaxAxialTilt keeps the tilt below a right angle.
	MaxAxialTilt = 89.9
)

// ErrTimerRejected is reported when the host refuses to register the stepped
// update timer.
var ErrTimerRejected = errors.New("stepped update timer rejected by host")

// ConfigurationError describes a parameter that was replaced by a safe value.
type ConfigurationError struct {
	Parameter string
	Value     any
	Fallback  any
	Reason    string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s %v (%s), using %v", e.Parameter, e.Value, e.Reason, e.Fallback)
}

// Sanitize returns a snapshot that is safe to simulate with, plus one
// ConfigurationError for every value that had to be replaced.
func Sanitize(p params.Snapshot) (params.Snapshot, []error) {
	var errs []error
	bad := func(name string, value, fallback any, reason string) {
		errs = append(errs, &ConfigurationError{Parameter: name, Value: value, Fallback: fallback, Reason: reason})
	}

	if !isFinite(p.LengthOfDay) || p.LengthOfDay <= 0 {
		bad("LengthOfDay", p.LengthOfDay, DefaultLengthOfDay, "must be positive")
		p.LengthOfDay = DefaultLengthOfDay
	}
	if gomath.IsNaN(p.SeasonLength) || p.SeasonLength <= 0 {
		bad("SeasonLength", p.SeasonLength, FrozenSeasonLength, "must be positive")
		p.SeasonLength = FrozenSeasonLength
	}
	if p.SteppedTimeRate <= 0 {
		bad("SteppedTimeRate", p.SteppedTimeRate, DefaultSteppedTimeRate, "must be positive")
		p.SteppedTimeRate = DefaultSteppedTimeRate
	}
	if !p.UpdateMode.Valid() {
		bad("UpdateMode", p.UpdateMode, params.Continuous, "unrecognised mode")
		p.UpdateMode = params.Continuous
	}

	switch {
	case gomath.IsNaN(p.Latitude):
		bad("Latitude", p.Latitude, 0.0, "not a number")
		p.Latitude = 0
	case p.Latitude < -90 || p.Latitude > 90:
		clamped := gomath.Max(-90, gomath.Min(90, p.Latitude))
		bad("Latitude", p.Latitude, clamped, "outside [-90, 90]")
		p.Latitude = clamped
	}

	switch {
	case gomath.IsNaN(p.AxialTilt):
		bad("AxialTilt", p.AxialTilt, 0.0, "not a number")
		p.AxialTilt = 0
	case p.AxialTilt < 0 || p.AxialTilt > MaxAxialTilt:
		clamped := gomath.Max(0, gomath.Min(MaxAxialTilt, p.AxialTilt))
		bad("AxialTilt", p.AxialTilt, clamped, "outside [0, 90)")
		p.AxialTilt = clamped
	}

	return p, errs
}

func isFinite(f float64) bool {
	return !gomath.IsNaN(f) && !gomath.IsInf(f, 0)
}

var errMissingCollaborator = errors.New("daynight: params, timers and sink are required")
