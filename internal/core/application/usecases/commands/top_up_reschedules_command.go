package commands

import (
	"errors"

	"parcelbot/internal/core/domain/model/kernel"
	"parcelbot/internal/pkg/guard"
)

var ErrTopUpReschedulesCommandIsNotConstructed = errors.New(
	"TopUpReschedulesCommand must be created via NewTopUpReschedulesCommand constructor",
)

// TopUpReschedulesCommand buys a fresh set of free reschedules for an order.
type TopUpReschedulesCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.OrderID

	guard guard.ConstructorGuard
}

func NewTopUpReschedulesCommand(orderID kernel.OrderID) (TopUpReschedulesCommand, error) {
	if err := orderID.Validate(); err != nil {
		return TopUpReschedulesCommand{}, err
	}
	return TopUpReschedulesCommand{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (c TopUpReschedulesCommand) Validate() error {
	return c.guard.Validate(ErrTopUpReschedulesCommandIsNotConstructed)
}

func (c TopUpReschedulesCommand) OrderID() kernel.OrderID { return c.orderID }
