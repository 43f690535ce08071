// Package game implements the headless host frame loop. Each frame advances
// the day/night simulation by the real time elapsed and then runs the host
// timers, the same order an engine ticks actors before its timer manager.
package game

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-daynight/internal/engine/lighting"
	"github.com/Faultbox/midgard-daynight/internal/metrics"
	"github.com/Faultbox/midgard-daynight/internal/params"
)

// Simulation is the per-frame component, normally a *daynight.Controller.
type Simulation interface {
	Tick(deltaSeconds float64)
	TimeOfDay() float64
	Mode() params.UpdateMode
}

// Timers is advanced once per frame after the simulation.
type Timers interface {
	Advance(dt time.Duration) int
}

// LightSource reports the current sun light, normally a *scene.Scene.
type LightSource interface {
	Light() lighting.SunLight
}

// Config holds loop settings.
type Config struct {
	FPS            int
	MaxFrames      int           // 0 runs until the context is cancelled
	StatusInterval time.Duration // 0 disables status logs
}

// Options wires the loop to its collaborators.
type Options struct {
	Config     Config
	Clock      clockwork.Clock // defaults to the real clock
	Simulation Simulation
	Timers     Timers
	Light      LightSource        // optional
	Metrics    *metrics.Collector // optional
	Logger     *zap.Logger
	// OnFrame runs at the end of every frame on the loop goroutine.
	OnFrame func(frame int, dt time.Duration)
}

// Game is the host loop.
type Game struct {
	config  Config
	clock   clockwork.Clock
	sim     Simulation
	timers  Timers
	light   LightSource
	metrics *metrics.Collector
	log     *zap.Logger
	onFrame func(int, time.Duration)

	frames  atomic.Int64
	running atomic.Bool
}

// New validates opts and creates the loop.
func New(opts Options) (*Game, error) {
	if opts.Simulation == nil {
		return nil, errors.New("game: simulation is required")
	}
	if opts.Timers == nil {
		return nil, errors.New("game: timers are required")
	}
	if opts.Config.FPS <= 0 {
		return nil, fmt.Errorf("game: invalid fps %d", opts.Config.FPS)
	}
	g := &Game{
		config:  opts.Config,
		clock:   opts.Clock,
		sim:     opts.Simulation,
		timers:  opts.Timers,
		light:   opts.Light,
		metrics: opts.Metrics,
		log:     opts.Logger,
		onFrame: opts.OnFrame,
	}
	if g.clock == nil {
		g.clock = clockwork.NewRealClock()
	}
	if g.log == nil {
		g.log = zap.NewNop()
	}
	return g, nil
}

// FrameDuration returns the target frame period.
func (g *Game) FrameDuration() time.Duration {
	return time.Second / time.Duration(g.config.FPS)
}

// Frames returns the number of frames run so far.
func (g *Game) Frames() int {
	return int(g.frames.Load())
}

// Running reports whether Run is active.
func (g *Game) Running() bool {
	return g.running.Load()
}

// Run drives frames until ctx is done or MaxFrames is reached.
func (g *Game) Run(ctx context.Context) error {
	if !g.running.CompareAndSwap(false, true) {
		return errors.New("game: already running")
	}
	defer g.running.Store(false)

	ticker := g.clock.NewTicker(g.FrameDuration())
	defer ticker.Stop()

	last := g.clock.Now()
	lastStatus := last

	g.log.Info("starting frame loop",
		zap.Int("fps", g.config.FPS),
		zap.Int("max_frames", g.config.MaxFrames),
	)

	for {
		select {
		case <-ctx.Done():
			g.log.Info("frame loop stopped", zap.Int("frames", g.Frames()))
			return nil
		case <-ticker.Chan():
		}

		now := g.clock.Now()
		dt := now.Sub(last)
		last = now

		g.frame(dt)
		n := int(g.frames.Add(1))

		if g.config.StatusInterval > 0 && now.Sub(lastStatus) >= g.config.StatusInterval {
			lastStatus = now
			g.logStatus(n)
		}
		if g.onFrame != nil {
			g.onFrame(n, dt)
		}

		if g.config.MaxFrames > 0 && n >= g.config.MaxFrames {
			g.log.Info("frame limit reached", zap.Int("frames", n))
			return nil
		}
	}
}

// frame runs one simulation step followed by the host timers.
func (g *Game) frame(dt time.Duration) {
	g.sim.Tick(dt.Seconds())
	g.timers.Advance(dt)

	if g.light != nil {
		g.metrics.SetSunElevation(g.light.Light().Elevation)
	}
}

func (g *Game) logStatus(frame int) {
	fields := []zap.Field{
		zap.Int("frame", frame),
		zap.String("clock", FormatHour(g.sim.TimeOfDay())),
		zap.Float64("time_of_day", g.sim.TimeOfDay()),
		zap.String("mode", string(g.sim.Mode())),
	}
	if g.light != nil {
		l := g.light.Light()
		fields = append(fields,
			zap.Float64("sun_elevation", l.Elevation),
			zap.Float64("brightness", l.Brightness),
		)
	}
	g.log.Info("status", fields...)
}

// FormatHour renders a simulated hour as day and wall-clock time, e.g.
// "day 2 06:30".
func FormatHour(timeOfDay float64) string {
	if timeOfDay < 0 {
		timeOfDay = 0
	}
	day := int(timeOfDay / 24)
	minutes := int((timeOfDay - float64(day)*24) * 60)
	return fmt.Sprintf("day %d %02d:%02d", day, minutes/60, minutes%60)
}
