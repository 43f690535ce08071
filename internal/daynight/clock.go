package daynight

// HoursPerDay is the length of a simulated day.
const HoursPerDay = 24

// Clock tracks the simulated time of day in hours. The value is not wrapped at
// 24; every consumer is periodic in it.
type Clock struct {
	timeOfDay float64
}

// NewClock creates a clock starting at hours.
func NewClock(hours float64) *Clock {
	return &Clock{timeOfDay: hours}
}

// TimeOfDay returns the current simulated hour.
func (c *Clock) TimeOfDay() float64 {
	return c.timeOfDay
}

// HourOfDay returns TimeOfDay folded into [0, 24).
func (c *Clock) HourOfDay() float64 {
	h := c.timeOfDay - HoursPerDay*float64(int64(c.timeOfDay/HoursPerDay))
	if h < 0 {
		h += HoursPerDay
	}
	return h
}

// Advance moves the clock forward by deltaSeconds of real time, where a full
// simulated day lasts lengthOfDay real minutes. Negative deltas are ignored.
func (c *Clock) Advance(deltaSeconds, lengthOfDay float64) {
	if deltaSeconds <= 0 || lengthOfDay <= 0 {
		return
	}
	c.timeOfDay += deltaSeconds * HoursPerDay / (lengthOfDay * 60)
}

// Reset jumps to hours. Backwards jumps are allowed.
func (c *Clock) Reset(hours float64) {
	c.timeOfDay = hours
}
