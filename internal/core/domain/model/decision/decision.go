// Package decision holds the outcomes of the scheduling and upgrade rules.
//
// A decision is either accepted or rejected with a Reason. Following Go
// convention, operations report an accepted decision by returning a nil
// error, and a rejection as a *RejectedError. Rejections are never fatal:
// each reason names something the customer or the caller can act on.
package decision

import (
	"errors"
	"fmt"
)

// Reason classifies a rejected decision.
type Reason int

const (
	// OutOfRange: the proposed date or slot is outside the admissible window.
	OutOfRange Reason = iota + 1

	// AlreadyAtTier: the requested tier is the order's current tier.
	AlreadyAtTier

	// AlreadyAtHigherTier: the requested tier ranks below the current one.
	AlreadyAtHigherTier

	// QuotaExhausted: no free reschedules remain, a paid top-up is required.
	QuotaExhausted

	// Unavailable: the order store or payment gateway could not be reached.
	Unavailable

	// PaymentFailed: the payment gateway declined the charge.
	PaymentFailed
)

var reasonCodes = map[Reason]string{
	OutOfRange:          "out_of_range",
	AlreadyAtTier:       "already_at_tier",
	AlreadyAtHigherTier: "already_at_higher_tier",
	QuotaExhausted:      "quota_exhausted",
	Unavailable:         "unavailable",
	PaymentFailed:       "payment_failed",
}

// Code is the stable machine-readable name of the reason.
func (r Reason) Code() string {
	if code, ok := reasonCodes[r]; ok {
		return code
	}
	return "unknown"
}

func (r Reason) String() string {
	return r.Code()
}

// Sentinels for errors.Is. A *RejectedError matches the sentinel of its reason.
var (
	ErrOutOfRange          = &RejectedError{Reason: OutOfRange}
	ErrAlreadyAtTier       = &RejectedError{Reason: AlreadyAtTier}
	ErrAlreadyAtHigherTier = &RejectedError{Reason: AlreadyAtHigherTier}
	ErrQuotaExhausted      = &RejectedError{Reason: QuotaExhausted}
	ErrUnavailable         = &RejectedError{Reason: Unavailable}
	ErrPaymentFailed       = &RejectedError{Reason: PaymentFailed}
)

// RejectedError is a rejected decision.
type RejectedError struct {
	Reason Reason
	Cause  error
}

// Reject builds a rejection. cause may be nil.
func Reject(reason Reason, cause error) *RejectedError {
	return &RejectedError{Reason: reason, Cause: cause}
}

// Rejectf builds a rejection whose cause is a formatted message.
func Rejectf(reason Reason, format string, args ...any) *RejectedError {
	return Reject(reason, fmt.Errorf(format, args...))
}

func (e *RejectedError) Error() string {
	if e.Cause == nil {
		return "rejected: " + e.Reason.Code()
	}
	return fmt.Sprintf("rejected: %s: %v", e.Reason.Code(), e.Cause)
}

func (e *RejectedError) Unwrap() error {
	return e.Cause
}

// Is matches any RejectedError with the same reason.
func (e *RejectedError) Is(target error) bool {
	var other *RejectedError
	if !errors.As(target, &other) {
		return false
	}
	return other.Reason == e.Reason
}

// ReasonOf extracts the rejection reason from err. ok is false when err is
// nil or not a rejection.
func ReasonOf(err error) (reason Reason, ok bool) {
	var rejected *RejectedError
	if errors.As(err, &rejected) {
		return rejected.Reason, true
	}
	return 0, false
}

// IsRejected reports whether err carries any rejection.
func IsRejected(err error) bool {
	_, ok := ReasonOf(err)
	return ok
}
