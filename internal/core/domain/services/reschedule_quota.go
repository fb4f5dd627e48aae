package services

import (
	"parcelbot/internal/core/domain/model/order"
)

// RescheduleQuota tracks the free reschedules of an order. When CanReschedule
// is false the customer has to buy a top-up before the scheduling policy is
// consulted at all.
type RescheduleQuota struct{}

func NewRescheduleQuota() RescheduleQuota {
	return RescheduleQuota{}
}

// CanReschedule reports whether a free reschedule remains.
func (RescheduleQuota) CanReschedule(o order.Order) bool {
	return o.ReschedulesRemaining() > 0
}

// Consume uses one free reschedule, rejecting with QuotaExhausted when none
// remain.
func (RescheduleQuota) Consume(o order.Order) (order.Order, error) {
	return o.Apply(order.ConsumeReschedule{})
}

// TopUp restores exactly order.MaxReschedules free reschedules.
func (RescheduleQuota) TopUp(o order.Order) (order.Order, error) {
	return o.Apply(order.TopUpReschedule{})
}
