// Package clock provides the wall clock the scheduling rules read "today" from.
package clock

import (
	"fmt"
	"time"
	// the service runs in minimal containers without a zoneinfo database
	_ "time/tzdata"

	"parcelbot/internal/core/domain/model/kernel"
	"parcelbot/internal/pkg/errs"
)

// DefaultTimezone is the zone delivery dates are counted in.
const DefaultTimezone = "Asia/Singapore"

// SystemClock reads the system time in a fixed IANA time zone, so "today"
// flips at local midnight of the delivery market rather than at UTC midnight.
type SystemClock struct {
	loc *time.Location
	now func() time.Time
}

// NewSystemClock loads the named zone. An empty name selects DefaultTimezone.
func NewSystemClock(timezone string) (*SystemClock, error) {
	if timezone == "" {
		timezone = DefaultTimezone
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("timezone", fmt.Errorf("load %q: %w", timezone, err))
	}
	return &SystemClock{loc: loc, now: time.Now}, nil
}

// Now returns the current instant in the configured zone.
func (c *SystemClock) Now() time.Time {
	return c.now().In(c.loc)
}

// Today returns the calendar date in the configured zone.
func (c *SystemClock) Today() kernel.Date {
	return kernel.DateOf(c.Now())
}

// Location returns the configured zone.
func (c *SystemClock) Location() *time.Location {
	return c.loc
}
