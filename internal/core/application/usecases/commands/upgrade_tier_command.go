package commands

import (
	"errors"

	"parcelbot/internal/core/domain/model/kernel"
	"parcelbot/internal/core/domain/model/tier"
	"parcelbot/internal/pkg/guard"
)

var ErrUpgradeTierCommandIsNotConstructed = errors.New(
	"UpgradeTierCommand must be created via NewUpgradeTierCommand constructor",
)

// UpgradeTierCommand asks to move an order to a higher tier.
type UpgradeTierCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.OrderID
	toTier  tier.Tier

	guard guard.ConstructorGuard
}

func NewUpgradeTierCommand(orderID kernel.OrderID, toTier tier.Tier) (UpgradeTierCommand, error) {
	if err := errors.Join(orderID.Validate(), toTier.Validate()); err != nil {
		return UpgradeTierCommand{}, err
	}
	return UpgradeTierCommand{orderID: orderID, toTier: toTier, guard: guard.NewConstructorGuard()}, nil
}

func (c UpgradeTierCommand) Validate() error {
	return c.guard.Validate(ErrUpgradeTierCommandIsNotConstructed)
}

func (c UpgradeTierCommand) OrderID() kernel.OrderID { return c.orderID }
func (c UpgradeTierCommand) ToTier() tier.Tier       { return c.toTier }
