// Package daynight drives the orientation of the sun, its rotation axis and the
// star field from a simulated clock.
//
// The Controller advances the clock on every host tick and always republishes
// the star field. The sun is either republished every tick (continuous mode) or
// on a host timer (stepped mode), which trades smoothness for fewer shadow
// rebuilds downstream. Parameters come from a ParameterSource and are re-read
// only when it reports a change.
package daynight

import (
	"errors"
	gomath "math"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-daynight/internal/engine/timer"
	"github.com/Faultbox/midgard-daynight/internal/metrics"
	"github.com/Faultbox/midgard-daynight/internal/params"
	"github.com/Faultbox/midgard-daynight/pkg/math"
)

// Sink receives solved orientations, typically the transform nodes of a scene.
// Methods are called with the controller locked and must not call back into it.
type Sink interface {
	ApplyAxis(q math.Quat)
	ApplySun(q math.Quat)
	ApplyStarField(q math.Quat)
}

// ParameterSource provides parameter snapshots and change notifications.
type ParameterSource interface {
	Snapshot() params.Snapshot
	Subscribe(fn params.Listener) (cancel func())
}

// Options configures a Controller.
type Options struct {
	Params    ParameterSource
	Timers    timer.Manager
	Sink      Sink
	TimeOfDay float64 // starting hour
	Logger    *zap.Logger
	Metrics   *metrics.Collector // optional
}

// Controller schedules clock advancement and orientation updates.
type Controller struct {
	mu sync.Mutex

	params  ParameterSource
	timers  timer.Manager
	sink    Sink
	log     *zap.Logger
	metrics *metrics.Collector

	clock *Clock
	snap  params.Snapshot // sanitized
	mode  params.UpdateMode

	// stepped timer; generation is bumped on every arm/disarm so a callback
	// that was already dequeued by the host can tell it is stale
	handle     timer.Handle
	generation uint64

	warned      map[string]string
	started     bool
	unsubscribe func()
	last        Orientation
}

// New creates a controller. Nothing is published until Start.
func New(opts Options) (*Controller, error) {
	if opts.Params == nil || opts.Timers == nil || opts.Sink == nil {
		return nil, errMissingCollaborator
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	c := &Controller{
		params:  opts.Params,
		timers:  opts.Timers,
		sink:    opts.Sink,
		log:     log,
		metrics: opts.Metrics,
		clock:   NewClock(opts.TimeOfDay),
		warned:  make(map[string]string),
		last: Orientation{
			Axis:      math.QuatIdentity(),
			Sun:       math.QuatIdentity(),
			StarField: math.QuatIdentity(),
		},
	}
	c.applySnapshotLocked(c.params.Snapshot())
	c.mode = c.snap.UpdateMode
	return c, nil
}

// Start publishes the initial orientations, arms the stepped timer when needed
// and subscribes to parameter changes. Calling Start twice is a no-op.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return
	}
	c.started = true

	// subscribe before reading so no change falls between the two
	c.unsubscribe = c.params.Subscribe(c.onParamsChanged)
	c.applySnapshotLocked(c.params.Snapshot())

	c.publishSunLocked(metrics.TriggerStart)
	c.publishStarsLocked()

	// force the transition so stepped mode arms its timer
	c.mode = params.Continuous
	c.setModeLocked(c.snap.UpdateMode)

	c.log.Info("day/night controller started",
		zap.Float64("time_of_day", c.clock.TimeOfDay()),
		zap.String("mode", string(c.mode)),
		zap.Float64("latitude", c.snap.Latitude),
		zap.Float64("axial_tilt", c.snap.AxialTilt),
		zap.Float64("length_of_day", c.snap.LengthOfDay),
		zap.Float64("season_length", c.snap.SeasonLength),
		zap.Duration("stepped_time_rate", c.snap.SteppedTimeRate),
	)
}

// Stop unsubscribes from parameter changes and cancels the stepped timer.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return
	}
	c.started = false
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	c.disarmLocked()
	c.log.Info("day/night controller stopped", zap.Float64("time_of_day", c.clock.TimeOfDay()))
}

// Tick is called by the host once per frame with the real time elapsed since
// the previous frame. The clock advances in every mode.
func (c *Controller) Tick(deltaSeconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if deltaSeconds < 0 || gomath.IsNaN(deltaSeconds) {
		c.log.Debug("ignoring invalid frame delta", zap.Float64("delta_seconds", deltaSeconds))
		deltaSeconds = 0
	}
	c.clock.Advance(deltaSeconds, c.snap.LengthOfDay)
	c.metrics.ObserveTick(c.clock.TimeOfDay())

	c.publishStarsLocked()
	if c.mode == params.Continuous {
		c.publishSunLocked(metrics.TriggerTick)
	}
}

// TimeOfDay returns the simulated hour.
func (c *Controller) TimeOfDay() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clock.TimeOfDay()
}

// SetTimeOfDay jumps the clock and republishes everything immediately.
func (c *Controller) SetTimeOfDay(hours float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.clock.TimeOfDay()
	c.clock.Reset(hours)
	c.log.Info("time of day reset", zap.Float64("from", prev), zap.Float64("to", hours))

	c.publishSunLocked(metrics.TriggerReset)
	c.publishStarsLocked()
}

// Mode returns the active update mode.
func (c *Controller) Mode() params.UpdateMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// SteppedTimerActive reports whether the stepped update timer is registered.
func (c *Controller) SteppedTimerActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handle.IsValid() && c.timers.IsActive(c.handle)
}

// Parameters returns the sanitized snapshot in use.
func (c *Controller) Parameters() params.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// Orientation returns the most recently published orientations.
func (c *Controller) Orientation() Orientation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

func (c *Controller) onParamsChanged(_, next params.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return
	}

	old := c.snap
	c.applySnapshotLocked(next)

	switch {
	case c.snap.UpdateMode != c.mode:
		c.setModeLocked(c.snap.UpdateMode)
	case c.mode == params.Stepped && c.snap.SteppedTimeRate != old.SteppedTimeRate:
		c.retimeLocked()
	}
}

// applySnapshotLocked sanitizes p into c.snap and reports new problems once.
func (c *Controller) applySnapshotLocked(p params.Snapshot) {
	safe, errs := Sanitize(p)
	seen := make(map[string]bool, len(errs))
	for _, err := range errs {
		var cfgErr *ConfigurationError
		if !errors.As(err, &cfgErr) {
			c.log.Warn("configuration error", zap.Error(err))
			continue
		}
		seen[cfgErr.Parameter] = true
		msg := cfgErr.Error()
		if c.warned[cfgErr.Parameter] == msg {
			continue
		}
		c.warned[cfgErr.Parameter] = msg
		c.metrics.ObserveConfigWarning(cfgErr.Parameter)
		c.log.Warn("configuration error", zap.String("parameter", cfgErr.Parameter), zap.Error(err))
	}
	for name := range c.warned {
		if !seen[name] {
			delete(c.warned, name)
		}
	}
	c.snap = safe
}

func (c *Controller) setModeLocked(mode params.UpdateMode) {
	if mode == c.mode {
		return
	}
	if mode == params.Stepped {
		if !c.armLocked() {
			mode = params.Continuous
		}
	} else {
		c.disarmLocked()
	}
	if mode == c.mode {
		return
	}
	c.mode = mode
	c.metrics.ObserveModeSwitch(string(mode))
	c.log.Info("update mode changed", zap.String("mode", string(mode)))
}

// armLocked registers the stepped timer, cancelling any previous one first.
func (c *Controller) armLocked() bool {
	c.disarmLocked()

	gen := c.generation
	rate := c.snap.SteppedTimeRate
	h := c.timers.SetTimer(func() { c.onStep(gen) }, rate)
	if !h.IsValid() {
		c.log.Warn("falling back to continuous updates", zap.Duration("rate", rate), zap.Error(ErrTimerRejected))
		return false
	}
	c.handle = h
	c.metrics.SetTimerArmed(true)
	return true
}

// disarmLocked cancels the stepped timer. After it returns no pending firing
// can publish.
func (c *Controller) disarmLocked() {
	c.generation++
	if !c.handle.IsValid() {
		return
	}
	c.timers.ClearTimer(c.handle)
	c.handle = 0
	c.metrics.SetTimerArmed(false)
}

// retimeLocked applies a new stepped rate without losing the elapsed time.
func (c *Controller) retimeLocked() {
	rate := c.snap.SteppedTimeRate
	if !c.handle.IsValid() || !c.timers.ResetTimer(c.handle, rate) {
		if !c.armLocked() {
			c.setModeLocked(params.Continuous)
			return
		}
	}
	c.metrics.ObserveTimerRestart()
	c.log.Debug("stepped rate changed", zap.Duration("rate", rate))
}

func (c *Controller) onStep(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation || c.mode != params.Stepped {
		return
	}
	c.publishSunLocked(metrics.TriggerTimer)
}

func (c *Controller) publishSunLocked(trigger string) {
	axis, sun, tilt := SolveSun(c.snap.Latitude, c.snap.AxialTilt, c.clock.TimeOfDay(), c.snap.SeasonLength)
	c.sink.ApplyAxis(axis)
	c.sink.ApplySun(sun)
	c.last.Axis, c.last.Sun, c.last.SunTilt = axis, sun, tilt
	c.metrics.ObserveSun(trigger, tilt)
}

func (c *Controller) publishStarsLocked() {
	stars := SolveStars(c.snap.Latitude, c.clock.TimeOfDay(), c.snap.SeasonLength)
	c.sink.ApplyStarField(stars)
	c.last.StarField = stars
	c.metrics.ObserveStars()
}
