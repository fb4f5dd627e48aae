package commands

import (
	"errors"

	"parcelbot/internal/core/domain/model/kernel"
	"parcelbot/internal/core/domain/model/tier"
	"parcelbot/internal/pkg/guard"
)

var ErrRegisterOrderCommandIsNotConstructed = errors.New(
	"RegisterOrderCommand must be created via NewRegisterOrderCommand constructor",
)

// RegisterOrderCommand records a shipment booked elsewhere so that its
// customer can reschedule and upgrade it.
//
// Example:
//
//	cmd, err := NewRegisterOrderCommand(
//	    kernel.MustOrderID("NVSG0001"), tier.Standard,
//	    kernel.MustDate(2024, 1, 1), kernel.MustDate(2024, 1, 5), kernel.Slot{},
//	)
//	if err != nil {
//	    return fmt.Errorf("invalid shipment: %w", err)
//	}
//	err = handler.Handle(ctx, cmd)
type RegisterOrderCommand struct { //nolint:recvcheck //using for validation
	orderID  kernel.OrderID
	tier     tier.Tier
	pickup   kernel.Date
	delivery kernel.Date
	slot     kernel.Slot

	guard guard.ConstructorGuard
}

// NewRegisterOrderCommand validates the shipment's id, tier and dates.
// Aggregate-level rules (slot only on slot tiers, delivery after pickup) are
// checked when the order is built.
func NewRegisterOrderCommand(
	orderID kernel.OrderID,
	t tier.Tier,
	pickup, delivery kernel.Date,
	slot kernel.Slot,
) (RegisterOrderCommand, error) {
	cmd := RegisterOrderCommand{
		slot:  slot,
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setTier(t),
		cmd.setDates(pickup, delivery),
	); err != nil {
		return RegisterOrderCommand{}, err
	}

	return cmd, nil
}

func (c RegisterOrderCommand) Validate() error {
	return c.guard.Validate(ErrRegisterOrderCommandIsNotConstructed)
}

func (c RegisterOrderCommand) OrderID() kernel.OrderID { return c.orderID }
func (c RegisterOrderCommand) Tier() tier.Tier         { return c.tier }
func (c RegisterOrderCommand) Pickup() kernel.Date     { return c.pickup }
func (c RegisterOrderCommand) Delivery() kernel.Date   { return c.delivery }
func (c RegisterOrderCommand) Slot() kernel.Slot       { return c.slot }

func (c *RegisterOrderCommand) setOrderID(id kernel.OrderID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.orderID = id
	return nil
}

func (c *RegisterOrderCommand) setTier(t tier.Tier) error {
	if err := t.Validate(); err != nil {
		return err
	}
	c.tier = t
	return nil
}

func (c *RegisterOrderCommand) setDates(pickup, delivery kernel.Date) error {
	if err := errors.Join(pickup.Validate(), delivery.Validate()); err != nil {
		return err
	}
	c.pickup = pickup
	c.delivery = delivery
	return nil
}
