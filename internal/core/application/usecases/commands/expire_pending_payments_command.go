package commands

import (
	"errors"

	"parcelbot/internal/pkg/guard"
)

var ErrExpirePendingPaymentsCommandIsNotConstructed = errors.New(
	"ExpirePendingPaymentsCommand must be created via NewExpirePendingPaymentsCommand constructor",
)

// ExpirePendingPaymentsCommand gives up on payments whose outcome never
// arrived. It is run periodically by the expiry job.
type ExpirePendingPaymentsCommand struct {
	guard guard.ConstructorGuard
}

func NewExpirePendingPaymentsCommand() ExpirePendingPaymentsCommand {
	return ExpirePendingPaymentsCommand{guard: guard.NewConstructorGuard()}
}

func (c ExpirePendingPaymentsCommand) Validate() error {
	return c.guard.Validate(ErrExpirePendingPaymentsCommandIsNotConstructed)
}
