package services

import (
	"parcelbot/internal/core/domain/model/decision"
	"parcelbot/internal/core/domain/model/kernel"
	"parcelbot/internal/core/domain/model/order"
)

// Rescheduler decides a reschedule request end to end.
//
// Order of checks:
//  1. quota, unless the request picks the slot of an order awaiting one
//     after an upgrade (that request completes the upgrade and is free)
//  2. scheduling policy
//  3. apply date, slot (slot tiers only) and, when not free, consume quota
type Rescheduler struct {
	policy SchedulingPolicy
	quota  RescheduleQuota
}

func NewRescheduler(policy SchedulingPolicy, quota RescheduleQuota) Rescheduler {
	return Rescheduler{policy: policy, quota: quota}
}

// Reschedule returns the rescheduled copy of o, or the rejection. free
// reports whether the request was the free slot choice after an upgrade.
func (r Rescheduler) Reschedule(o order.Order, req RescheduleRequest, today kernel.Date) (next order.Order, free bool, err error) {
	if err = o.Validate(); err != nil {
		return order.Order{}, false, err
	}

	free = o.AwaitingSlot() && !req.Slot.IsZero()
	if !free && !r.quota.CanReschedule(o) {
		return order.Order{}, false, decision.Reject(decision.QuotaExhausted, nil)
	}

	if err = r.policy.Validate(req, o, today); err != nil {
		return order.Order{}, false, err
	}

	next, err = o.Apply(order.SetDeliveryDate{Date: req.Date})
	if err != nil {
		return order.Order{}, false, err
	}
	if next.Tier().RequiresSlot() {
		if next, err = next.Apply(order.SetSlot{Slot: req.Slot}); err != nil {
			return order.Order{}, false, err
		}
	}
	if !free {
		if next, err = r.quota.Consume(next); err != nil {
			return order.Order{}, false, err
		}
	}

	return next, free, nil
}
