package commands

import (
	"errors"
	"strings"

	"parcelbot/internal/pkg/errs"
	"parcelbot/internal/pkg/guard"
)

var ErrConfirmPaymentCommandIsNotConstructed = errors.New(
	"ConfirmPaymentCommand must be created via NewConfirmPaymentCommand constructor",
)

// ConfirmPaymentCommand carries the gateway's report that a charge was paid.
// It may be delivered more than once.
type ConfirmPaymentCommand struct { //nolint:recvcheck //using for validation
	chargeReference string

	guard guard.ConstructorGuard
}

func NewConfirmPaymentCommand(chargeReference string) (ConfirmPaymentCommand, error) {
	chargeReference = strings.TrimSpace(chargeReference)
	if chargeReference == "" {
		return ConfirmPaymentCommand{}, errs.NewValueIsRequiredError("charge reference")
	}
	return ConfirmPaymentCommand{chargeReference: chargeReference, guard: guard.NewConstructorGuard()}, nil
}

func (c ConfirmPaymentCommand) Validate() error {
	return c.guard.Validate(ErrConfirmPaymentCommandIsNotConstructed)
}

func (c ConfirmPaymentCommand) ChargeReference() string { return c.chargeReference }
