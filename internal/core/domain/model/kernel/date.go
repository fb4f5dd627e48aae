package kernel

import (
	"fmt"
	"time"

	"parcelbot/internal/pkg/errs"
	"parcelbot/internal/pkg/guard"
)

// DateLayout is the textual form of a Date on every wire.
const DateLayout = time.DateOnly

// ErrDateIsNotConstructed indicates a zero-value Date.
var ErrDateIsNotConstructed = errs.NewValueIsRequiredError("Date must be created via NewDate, DateOf or ParseDate")

// Date is a calendar day. Scheduling rules count whole days, so a Date has no
// clock and no time zone: the date of "today" is decided once by the clock
// adapter in the service's configured zone.
type Date struct {
	t     time.Time // always 00:00 UTC
	guard guard.ConstructorGuard
}

// NewDate builds a date, rejecting values that time.Date would normalise
// (for example February 30th).
func NewDate(year int, month time.Month, day int) (Date, error) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return Date{}, errs.NewValueIsInvalidErrorWithCause(
			"date",
			fmt.Errorf("%04d-%02d-%02d does not exist", year, int(month), day),
		)
	}
	return Date{t: t, guard: guard.NewConstructorGuard()}, nil
}

// MustDate is NewDate for literals known to be valid.
func MustDate(year int, month time.Month, day int) Date {
	d, err := NewDate(year, month, day)
	if err != nil {
		panic(err)
	}
	return d
}

// DateOf takes the wall-clock date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), guard: guard.NewConstructorGuard()}
}

// ParseDate parses the YYYY-MM-DD form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, errs.NewValueIsInvalidErrorWithCause("date", err)
	}
	return DateOf(t), nil
}

func (d Date) Validate() error {
	return d.guard.Validate(ErrDateIsNotConstructed)
}

// AddDays moves the date by n calendar days (n may be negative).
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n), guard: d.guard}
}

// Compare returns -1, 0 or +1.
func (d Date) Compare(other Date) int {
	return d.t.Compare(other.t)
}

func (d Date) Before(other Date) bool {
	return d.t.Before(other.t)
}

func (d Date) After(other Date) bool {
	return d.t.After(other.t)
}

func (d Date) Equal(other Date) bool {
	return d.t.Equal(other.t)
}

// DaysUntil is the signed number of days from d to other.
func (d Date) DaysUntil(other Date) int {
	return int(other.t.Sub(d.t).Hours() / 24)
}

// Time is the date at 00:00 UTC.
func (d Date) Time() time.Time {
	return d.t
}

// At is the date at the given hour, UTC.
func (d Date) At(hour int) time.Time {
	return d.t.Add(time.Duration(hour) * time.Hour)
}

func (d Date) String() string {
	if d.Validate() != nil {
		return ""
	}
	return d.t.Format(DateLayout)
}

// MaxDate returns the later of two dates.
func MaxDate(a, b Date) Date {
	if a.After(b) {
		return a
	}
	return b
}
