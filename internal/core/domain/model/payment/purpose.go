package payment

import (
	"fmt"

	"parcelbot/internal/pkg/errs"
)

// Purpose is what a payment buys.
type Purpose int

const (
	UnknownPurpose Purpose = iota

	// TierUpgrade commits a higher tier on confirmation.
	TierUpgrade

	// RescheduleTopUp restores the free reschedules on confirmation.
	RescheduleTopUp
)

func getPurposeStrings() map[Purpose]string {
	//nolint:exhaustive // UnknownPurpose is intentionally excluded as it's invalid
	return map[Purpose]string{
		TierUpgrade:     "tier_upgrade",
		RescheduleTopUp: "reschedule_top_up",
	}
}

// ParsePurpose maps a stored purpose name back to a Purpose.
func ParsePurpose(s string) (Purpose, error) {
	for p, name := range getPurposeStrings() {
		if name == s {
			return p, nil
		}
	}
	return UnknownPurpose, errs.NewValueIsInvalidErrorWithCause("purpose", fmt.Errorf("%q is not a valid purpose", s))
}

func (p Purpose) Validate() error {
	if _, ok := getPurposeStrings()[p]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("purpose", fmt.Errorf("%d is not a valid purpose", p))
	}
	return nil
}

func (p Purpose) String() string {
	if s, ok := getPurposeStrings()[p]; ok {
		return s
	}
	return "unknown"
}
