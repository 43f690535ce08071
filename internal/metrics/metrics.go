// Package metrics exposes Prometheus metrics for the sky simulation.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Sun update triggers.
const (
	TriggerTick  = "tick"
	TriggerTimer = "timer"
	TriggerReset = "reset"
	TriggerStart = "start"
)

// Collector holds the day/night metrics. A nil *Collector is valid and
// records nothing.
type Collector struct {
	gatherer prometheus.Gatherer

	Ticks             prometheus.Counter
	SunUpdates        *prometheus.CounterVec
	StarUpdates       prometheus.Counter
	ModeSwitches      *prometheus.CounterVec
	TimerRestarts     prometheus.Counter
	ConfigWarnings    *prometheus.CounterVec
	TimeOfDay         prometheus.Gauge
	SunTilt           prometheus.Gauge
	SunElevation      prometheus.Gauge
	SteppedTimerArmed prometheus.Gauge
}

// New registers the day/night metrics against reg. A nil reg uses the default
// registerer.
func New(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &Collector{gatherer: gatherer}
	var err error

	if c.Ticks, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "daynight_ticks_total",
		Help: "Continuous ticks processed by the scheduler.",
	})); err != nil {
		return nil, err
	}
	if c.SunUpdates, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "daynight_sun_updates_total",
		Help: "Sun and axis orientations published, by trigger.",
	}, []string{"trigger"})); err != nil {
		return nil, err
	}
	if c.StarUpdates, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "daynight_star_updates_total",
		Help: "Star field orientations published.",
	})); err != nil {
		return nil, err
	}
	if c.ModeSwitches, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "daynight_mode_switches_total",
		Help: "Update mode transitions, by target mode.",
	}, []string{"mode"})); err != nil {
		return nil, err
	}
	if c.TimerRestarts, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "daynight_stepped_timer_restarts_total",
		Help: "Stepped timer rate changes applied while stepped.",
	})); err != nil {
		return nil, err
	}
	if c.ConfigWarnings, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "daynight_config_warnings_total",
		Help: "Parameters replaced by a safe fallback, by parameter.",
	}, []string{"parameter"})); err != nil {
		return nil, err
	}
	if c.TimeOfDay, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "daynight_time_of_day_hours",
		Help: "Simulated time of day, unbounded hours since the clock epoch.",
	})); err != nil {
		return nil, err
	}
	if c.SunTilt, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "daynight_sun_tilt_degrees",
		Help: "Seasonal sun tilt applied at the last sun update.",
	})); err != nil {
		return nil, err
	}
	if c.SunElevation, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "daynight_sun_elevation_degrees",
		Help: "Sun elevation above the horizon at the last sun update.",
	})); err != nil {
		return nil, err
	}
	if c.SteppedTimerArmed, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "daynight_stepped_timer_active",
		Help: "1 while the stepped update timer is registered.",
	})); err != nil {
		return nil, err
	}

	return c, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *Collector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// Handler serves the collector's gatherer in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

// ObserveTick records one continuous tick and the clock value after it.
func (c *Collector) ObserveTick(timeOfDay float64) {
	if c == nil {
		return
	}
	c.Ticks.Inc()
	c.TimeOfDay.Set(timeOfDay)
}

// ObserveSun records a sun publication.
func (c *Collector) ObserveSun(trigger string, tilt float64) {
	if c == nil {
		return
	}
	c.SunUpdates.WithLabelValues(trigger).Inc()
	c.SunTilt.Set(tilt)
}

// SetSunElevation records the light elevation derived from the sun orientation.
func (c *Collector) SetSunElevation(deg float64) {
	if c == nil {
		return
	}
	c.SunElevation.Set(deg)
}

// ObserveStars records a star field publication.
func (c *Collector) ObserveStars() {
	if c == nil {
		return
	}
	c.StarUpdates.Inc()
}

// ObserveModeSwitch records a transition into mode.
func (c *Collector) ObserveModeSwitch(mode string) {
	if c == nil {
		return
	}
	c.ModeSwitches.WithLabelValues(mode).Inc()
}

// ObserveTimerRestart records a stepped rate change.
func (c *Collector) ObserveTimerRestart() {
	if c == nil {
		return
	}
	c.TimerRestarts.Inc()
}

// SetTimerArmed mirrors whether the stepped timer is registered.
func (c *Collector) SetTimerArmed(armed bool) {
	if c == nil {
		return
	}
	if armed {
		c.SteppedTimerArmed.Set(1)
	} else {
		c.SteppedTimerArmed.Set(0)
	}
}

// ObserveConfigWarning records a parameter replaced by a fallback.
func (c *Collector) ObserveConfigWarning(parameter string) {
	if c == nil {
		return
	}
	c.ConfigWarnings.WithLabelValues(parameter).Inc()
}

// register adds col to reg, reusing an identical collector that is already
// registered.
func register[T prometheus.Collector](reg prometheus.Registerer, col T) (T, error) {
	if err := reg.Register(col); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			var zero T
			return zero, fmt.Errorf("collector already registered with incompatible type: %w", err)
		}
		var zero T
		return zero, err
	}
	return col, nil
}
