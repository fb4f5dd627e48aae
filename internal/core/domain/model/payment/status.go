package payment

import (
	"fmt"

	"parcelbot/internal/pkg/errs"
)

// Status represents the lifecycle state of a payment.
//
// State transitions:
//
//	Pending ──┬──> Confirmed
//	          ├──> Failed
//	          └──> Expired ──> Confirmed
//
// A confirmation that arrives after expiry is still honoured: the customer
// has paid. Confirmed and Failed are final.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	Unknown Status = iota

	// Pending is the initial status: a charge was or is being requested.
	Pending

	// Confirmed means the gateway reported the charge as paid.
	Confirmed

	// Failed means the gateway declined the charge.
	Failed

	// Expired means no outcome arrived within the pending time-to-live.
	Expired
)

func getStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Pending:   "pending",
		Confirmed: "confirmed",
		Failed:    "failed",
		Expired:   "expired",
	}
}

// ParseStatus maps a stored status name back to a Status.
func ParseStatus(s string) (Status, error) {
	for status, name := range getStatusStrings() {
		if name == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s))
}

// Validate checks if the Status value is valid.
func (s Status) Validate() error {
	if _, ok := getStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsFinal reports whether no further transition is possible.
func (s Status) IsFinal() bool {
	return s == Confirmed || s == Failed
}

// Confirm transitions the status to Confirmed.
//
// Valid transitions:
//   - Pending -> Confirmed
//   - Expired -> Confirmed (late confirmation)
//   - Confirmed -> Confirmed (replayed confirmation, already is true)
//
// Returns an error from Failed or Unknown.
func (s Status) Confirm() (next Status, already bool, err error) {
	switch s {
	case Pending, Expired:
		return Confirmed, false, nil
	case Confirmed:
		return Confirmed, true, nil
	default:
		return 0, false, errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("%s is not a valid status to confirm", s),
		)
	}
}

// Fail transitions the status to Failed.
//
// Valid transitions:
//   - Pending -> Failed
//   - Failed -> Failed (replayed failure, already is true)
func (s Status) Fail() (next Status, already bool, err error) {
	switch s {
	case Pending:
		return Failed, false, nil
	case Failed:
		return Failed, true, nil
	default:
		return 0, false, errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("%s is not a valid status to fail", s),
		)
	}
}

// Expire transitions Pending to Expired.
func (s Status) Expire() (Status, error) {
	if s != Pending {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("%s is not a valid status to expire", s),
		)
	}
	return Expired, nil
}
