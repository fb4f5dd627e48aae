package order

import (
	"errors"
	"fmt"
	"time"

	"parcelbot/internal/core/domain/model/decision"
	"parcelbot/internal/core/domain/model/kernel"
	"parcelbot/internal/core/domain/model/tier"
	"parcelbot/internal/pkg/errs"
	"parcelbot/internal/pkg/guard"
)

// MaxReschedules is the number of free reschedules an order starts with and
// the number a paid top-up restores.
const MaxReschedules = 2

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// NewOrder or RestoreOrder. This ensures all orders are properly validated.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder constructor")

	// ErrUnknownCommand is returned by Apply for a nil command.
	ErrUnknownCommand = errors.New("unknown order command")
)

// Order represents a parcel delivery as seen by the customer. It is the
// aggregate root for every tier and schedule change.
//
// Order follows these invariants:
//   - Must have a valid order identifier and tier
//   - Pickup and delivery dates must be valid dates
//   - Remaining reschedules are within [0, MaxReschedules]
//   - The slot is either empty or one of the fixed slots, and only a
//     slot-requiring tier carries one
//   - Can only be created through NewOrder or RestoreOrder
//
// The delivery date always lay inside the tier's admissible window at the
// moment it was set; the aggregate does not know "today", so that check is
// made by the scheduling policy before SetDeliveryDate is applied.
type Order struct {
	// id is the opaque order key shared with the order store
	id kernel.OrderID

	// tier is the current delivery service level
	tier tier.Tier

	// pickupDate anchors every reschedule window
	pickupDate kernel.Date

	// deliveryDate is the scheduled delivery day
	deliveryDate kernel.Date

	// slot is the chosen delivery window, zero when none
	slot kernel.Slot

	// reschedulesRemaining counts free reschedules left
	reschedulesRemaining int

	// version is the store revision this snapshot was read at
	version int64

	// guard ensures the order was created via a constructor
	guard guard.ConstructorGuard
}

// NewOrder creates a freshly registered order with MaxReschedules free
// reschedules at version 0.
//
// Parameters:
//   - id: the order key
//   - t: the tier the shipment was booked at
//   - pickup: the date the parcel was picked up
//   - delivery: the initially scheduled delivery date, not before pickup
//   - slot: the booked slot, zero when the tier has none or none was chosen
//
// Returns:
//   - Order: the created order if all validations pass
//   - error: every validation failure, joined
//
// Example:
//
//	o, err := order.NewOrder(kernel.MustOrderID("NVSG0001"), tier.Standard,
//	    kernel.MustDate(2024, 1, 1), kernel.MustDate(2024, 1, 5), kernel.Slot{})
func NewOrder(id kernel.OrderID, t tier.Tier, pickup, delivery kernel.Date, slot kernel.Slot) (Order, error) {
	o := Order{
		reschedulesRemaining: MaxReschedules,
		guard:                guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		o.setTier(t),
		o.setDates(pickup, delivery),
		o.setSlot(slot),
	); err != nil {
		return Order{}, err
	}

	if delivery.Before(pickup) {
		return Order{}, errs.NewValueIsInvalidErrorWithCause(
			"delivery date",
			fmt.Errorf("%s is before pickup date %s", delivery, pickup),
		)
	}

	return o, nil
}

// RestoreOrder rebuilds an order read from the store. It validates the same
// invariants as NewOrder except the delivery/pickup ordering, which belongs to
// whoever wrote the document.
func RestoreOrder(
	id kernel.OrderID,
	t tier.Tier,
	pickup, delivery kernel.Date,
	slot kernel.Slot,
	reschedulesRemaining int,
	version int64,
) (Order, error) {
	o := Order{
		version: version,
		guard:   guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		o.setTier(t),
		o.setDates(pickup, delivery),
		o.setSlot(slot),
		o.setReschedulesRemaining(reschedulesRemaining),
		o.setVersion(version),
	); err != nil {
		return Order{}, err
	}

	return o, nil
}

// Validate ensures the Order instance was properly constructed.
func (o Order) Validate() error {
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

// ID returns the order key.
func (o Order) ID() kernel.OrderID {
	return o.id
}

// Tier returns the current tier.
func (o Order) Tier() tier.Tier {
	return o.tier
}

// PickupDate returns the date the parcel was picked up.
func (o Order) PickupDate() kernel.Date {
	return o.pickupDate
}

// DeliveryDate returns the scheduled delivery day.
func (o Order) DeliveryDate() kernel.Date {
	return o.deliveryDate
}

// Slot returns the chosen delivery slot, zero when none.
func (o Order) Slot() kernel.Slot {
	return o.slot
}

// ReschedulesRemaining returns the number of free reschedules left.
func (o Order) ReschedulesRemaining() int {
	return o.reschedulesRemaining
}

// Version returns the store revision the order was read at.
func (o Order) Version() int64 {
	return o.version
}

// AwaitingSlot reports whether the tier requires a slot that has not been
// chosen yet, typically right after an upgrade to a slot tier.
func (o Order) AwaitingSlot() bool {
	return o.tier.RequiresSlot() && o.slot.IsZero()
}

// DeliveryTime is the delivery date at the start of the slot, or at midnight
// when no slot is chosen. This is the datetime kept by the order store.
func (o Order) DeliveryTime() time.Time {
	return o.deliveryDate.At(o.slot.StartHour())
}

// Apply returns a copy of o with cmd applied. The receiver is never modified.
//
// Rejections:
//   - SetTier to a lower tier: AlreadyAtHigherTier
//   - SetDeliveryDate before the pickup date: OutOfRange
//   - SetSlot with a slot that is not fixed, or on a tier without slots: OutOfRange
//   - ConsumeReschedule with no reschedules left: QuotaExhausted
//
// Example:
//
//	next, err := o.Apply(order.ConsumeReschedule{})
//	if err != nil {
//	    // o is unchanged, report the rejection
//	}
func (o Order) Apply(cmd Command) (Order, error) {
	if err := o.Validate(); err != nil {
		return Order{}, err
	}

	switch c := cmd.(type) {
	case SetTier:
		return o.applySetTier(c)
	case SetDeliveryDate:
		return o.applySetDeliveryDate(c)
	case SetSlot:
		return o.applySetSlot(c)
	case ConsumeReschedule:
		return o.applyConsumeReschedule()
	case TopUpReschedule:
		o.reschedulesRemaining = MaxReschedules
		return o, nil
	default:
		return Order{}, fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
	}
}

// applySetTier moves the order up. The slot is cleared on every real
// upgrade: a non-slot tier carries none and a slot tier needs a fresh choice
// through a follow-up reschedule.
func (o Order) applySetTier(c SetTier) (Order, error) {
	if err := c.Tier.Validate(); err != nil {
		return Order{}, err
	}
	if c.Tier == o.tier {
		return o, nil
	}
	if c.Tier.Less(o.tier) {
		return Order{}, decision.Rejectf(decision.AlreadyAtHigherTier, "order is at %s, above %s", o.tier, c.Tier)
	}
	o.tier = c.Tier
	o.slot = kernel.Slot{}
	return o, nil
}

func (o Order) applySetDeliveryDate(c SetDeliveryDate) (Order, error) {
	if err := c.Date.Validate(); err != nil {
		return Order{}, err
	}
	if c.Date.Before(o.pickupDate) {
		return Order{}, decision.Rejectf(decision.OutOfRange, "%s is before pickup date %s", c.Date, o.pickupDate)
	}
	o.deliveryDate = c.Date
	return o, nil
}

func (o Order) applySetSlot(c SetSlot) (Order, error) {
	if !o.tier.RequiresSlot() {
		return Order{}, decision.Rejectf(decision.OutOfRange, "tier %s has no delivery slots", o.tier)
	}
	if !c.Slot.IsFixed() {
		return Order{}, decision.Rejectf(decision.OutOfRange, "%q is not one of the delivery slots", c.Slot.String())
	}
	o.slot = c.Slot
	return o, nil
}

func (o Order) applyConsumeReschedule() (Order, error) {
	if o.reschedulesRemaining <= 0 {
		return Order{}, decision.Reject(decision.QuotaExhausted, nil)
	}
	o.reschedulesRemaining--
	return o, nil
}

func (o *Order) setID(id kernel.OrderID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setTier(t tier.Tier) error {
	if err := t.Validate(); err != nil {
		return err
	}
	o.tier = t
	return nil
}

func (o *Order) setDates(pickup, delivery kernel.Date) error {
	if err := errors.Join(pickup.Validate(), delivery.Validate()); err != nil {
		return err
	}
	o.pickupDate = pickup
	o.deliveryDate = delivery
	return nil
}

// setSlot must run after setTier.
func (o *Order) setSlot(slot kernel.Slot) error {
	if slot.IsZero() {
		return nil
	}
	if !slot.IsFixed() {
		return errs.NewValueIsInvalidErrorWithCause("slot", fmt.Errorf("%s is not a delivery slot", slot))
	}
	if !o.tier.RequiresSlot() {
		return errs.NewValueIsInvalidErrorWithCause("slot", fmt.Errorf("tier %s has no delivery slots", o.tier))
	}
	o.slot = slot
	return nil
}

func (o *Order) setReschedulesRemaining(n int) error {
	if n < 0 || n > MaxReschedules {
		return errs.NewValueIsOutOfRangeError("reschedules remaining", n, 0, MaxReschedules)
	}
	o.reschedulesRemaining = n
	return nil
}

func (o *Order) setVersion(v int64) error {
	if v < 0 {
		return errs.NewValueIsInvalidErrorWithCause("version", fmt.Errorf("%d is negative", v))
	}
	o.version = v
	return nil
}
