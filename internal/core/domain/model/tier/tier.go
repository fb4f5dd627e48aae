package tier

import (
	"fmt"
	"strings"

	"parcelbot/internal/pkg/errs"
)

// Tier is a delivery service level. The numeric value is the tier's rank:
// a higher value is a higher tier.
//
// Rank order:
//
//	Standard < Express < Timeslot < FourteenDayStandard < FourteenDayTimeslot
//
// Tier is persisted and sent over the wire by its name (see String), never by
// its numeric value.
type Tier int

const (
	// Unknown represents an invalid or undefined tier.
	// This value (0) helps catch uninitialized Tier values.
	Unknown Tier = iota

	// Standard is the free default tier: delivery 3 to 7 days after pickup.
	Standard

	// Express allows delivery from the day after pickup.
	Express

	// Timeslot is Express with a chosen delivery slot.
	Timeslot

	// FourteenDayStandard stretches the standard window to 14 days after pickup.
	FourteenDayStandard

	// FourteenDayTimeslot is the 14 day window with a chosen delivery slot.
	// It is the terminal tier.
	FourteenDayTimeslot
)

const (
	nameStandard            = "standard"
	nameExpress             = "express"
	nameTimeslot            = "timeslot"
	nameFourteenDayStandard = "14day-standard"
	nameFourteenDayTimeslot = "14day-timeslot"
)

func getTierNames() map[Tier]string {
	//nolint:exhaustive // Unknown has no wire name
	return map[Tier]string{
		Standard:            nameStandard,
		Express:             nameExpress,
		Timeslot:            nameTimeslot,
		FourteenDayStandard: nameFourteenDayStandard,
		FourteenDayTimeslot: nameFourteenDayTimeslot,
	}
}

// All returns every valid tier in rank order.
func All() []Tier {
	return []Tier{Standard, Express, Timeslot, FourteenDayStandard, FourteenDayTimeslot}
}

// Parse maps a wire name to a Tier. Matching ignores case and surrounding
// whitespace. Unknown names, including the historical double-prefixed
// "14day-14day-standard", are rejected.
func Parse(name string) (Tier, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for t, n := range getTierNames() {
		if n == normalized {
			return t, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("tier", fmt.Errorf("%q is not a known tier", name))
}

// Validate checks that t is one of the five defined tiers.
//
// Returns:
//   - nil if the tier is valid
//   - error with details if the tier is Unknown or out of range
func (t Tier) Validate() error {
	if _, ok := getTierNames()[t]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("tier", fmt.Errorf("%d is not a valid tier", int(t)))
	}
	return nil
}

// String returns the wire name of the tier, or "unknown".
func (t Tier) String() string {
	if name, ok := getTierNames()[t]; ok {
		return name
	}
	return "unknown"
}

// Rank is the position of the tier in rank order, starting at 1.
func (t Tier) Rank() int {
	return int(t)
}

// Less reports whether t ranks strictly below other.
func (t Tier) Less(other Tier) bool {
	return t.Rank() < other.Rank()
}

// RequiresSlot reports whether orders on this tier must carry one of the
// fixed delivery slots.
func (t Tier) RequiresSlot() bool {
	return t == Timeslot || t == FourteenDayTimeslot
}

// IsTerminal reports whether no higher tier exists.
func (t Tier) IsTerminal() bool {
	return t == FourteenDayTimeslot
}
