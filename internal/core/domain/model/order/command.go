package order

import (
	"parcelbot/internal/core/domain/model/kernel"
	"parcelbot/internal/core/domain/model/tier"
)

// Command is a mutation of an Order. The set of commands is closed: only the
// types in this file implement it.
type Command interface {
	isCommand()
}

// SetTier moves the order to Tier. Setting the current tier is a no-op, a
// lower tier is rejected with AlreadyAtHigherTier.
type SetTier struct {
	Tier tier.Tier
}

// SetDeliveryDate moves the delivery to Date. The slot is kept.
type SetDeliveryDate struct {
	Date kernel.Date
}

// SetSlot chooses the delivery slot of a slot-requiring tier.
type SetSlot struct {
	Slot kernel.Slot
}

// ConsumeReschedule uses one free reschedule.
type ConsumeReschedule struct{}

// TopUpReschedule restores the free reschedules after a paid top-up.
type TopUpReschedule struct{}

func (SetTier) isCommand()           {}
func (SetDeliveryDate) isCommand()   {}
func (SetSlot) isCommand()           {}
func (ConsumeReschedule) isCommand() {}
func (TopUpReschedule) isCommand()   {}
