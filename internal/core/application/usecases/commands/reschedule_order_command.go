package commands

import (
	"errors"

	"parcelbot/internal/core/domain/model/kernel"
	"parcelbot/internal/pkg/guard"
)

var ErrRescheduleOrderCommandIsNotConstructed = errors.New(
	"RescheduleOrderCommand must be created via NewRescheduleOrderCommand constructor",
)

// RescheduleOrderCommand asks to move an order's delivery to a new date and,
// for slot tiers, into a slot.
type RescheduleOrderCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.OrderID
	date    kernel.Date
	slot    kernel.Slot

	guard guard.ConstructorGuard
}

// NewRescheduleOrderCommand validates the order id and date. The slot may be
// zero; whether it is required depends on the order's tier.
func NewRescheduleOrderCommand(orderID kernel.OrderID, date kernel.Date, slot kernel.Slot) (RescheduleOrderCommand, error) {
	if err := errors.Join(orderID.Validate(), date.Validate()); err != nil {
		return RescheduleOrderCommand{}, err
	}
	return RescheduleOrderCommand{
		orderID: orderID,
		date:    date,
		slot:    slot,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c RescheduleOrderCommand) Validate() error {
	return c.guard.Validate(ErrRescheduleOrderCommandIsNotConstructed)
}

func (c RescheduleOrderCommand) OrderID() kernel.OrderID { return c.orderID }
func (c RescheduleOrderCommand) Date() kernel.Date       { return c.date }
func (c RescheduleOrderCommand) Slot() kernel.Slot       { return c.slot }
