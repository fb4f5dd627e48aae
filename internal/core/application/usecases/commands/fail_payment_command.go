package commands

import (
	"errors"
	"strings"

	"parcelbot/internal/pkg/errs"
	"parcelbot/internal/pkg/guard"
)

var ErrFailPaymentCommandIsNotConstructed = errors.New(
	"FailPaymentCommand must be created via NewFailPaymentCommand constructor",
)

// FailPaymentCommand carries the gateway's report that a charge was declined.
type FailPaymentCommand struct { //nolint:recvcheck //using for validation
	chargeReference string
	reason          string

	guard guard.ConstructorGuard
}

func NewFailPaymentCommand(chargeReference, reason string) (FailPaymentCommand, error) {
	chargeReference = strings.TrimSpace(chargeReference)
	if chargeReference == "" {
		return FailPaymentCommand{}, errs.NewValueIsRequiredError("charge reference")
	}
	return FailPaymentCommand{
		chargeReference: chargeReference,
		reason:          reason,
		guard:           guard.NewConstructorGuard(),
	}, nil
}

func (c FailPaymentCommand) Validate() error {
	return c.guard.Validate(ErrFailPaymentCommandIsNotConstructed)
}

func (c FailPaymentCommand) ChargeReference() string { return c.chargeReference }
func (c FailPaymentCommand) Reason() string          { return c.reason }
