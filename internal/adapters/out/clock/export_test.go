package clock

import "time"

// WithNow replaces the time source of c.
func (c *SystemClock) WithNow(now func() time.Time) *SystemClock {
	c.now = now
	return c
}
