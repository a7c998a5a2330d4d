package clock

import "time"

// Precision is the resolution of every timestamp the application stores.
// Redis and SQL keep milliseconds, so the clock never hands out more.
const Precision = time.Millisecond

// Clock provides time operations that can be mocked for testing
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system clock
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current UTC time truncated to Precision, with the
// monotonic reading stripped.
func (c *RealClock) Now() time.Time {
	return time.Now().UTC().Truncate(Precision)
}
