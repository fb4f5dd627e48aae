package services

import (
	"fmt"

	"parcelbot/internal/core/domain/model/decision"
	"parcelbot/internal/core/domain/model/kernel"
	"parcelbot/internal/core/domain/model/order"
	"parcelbot/internal/core/domain/model/tier"
	"parcelbot/internal/pkg/errs"
)

// Window is an inclusive range of admissible delivery dates. A window whose
// Min is after its Max is empty and contains no date.
type Window struct {
	Min kernel.Date
	Max kernel.Date
}

// IsEmpty reports whether no date is admissible.
func (w Window) IsEmpty() bool {
	return w.Min.After(w.Max)
}

// Contains reports whether Min <= d <= Max.
func (w Window) Contains(d kernel.Date) bool {
	return !w.IsEmpty() && !d.Before(w.Min) && !d.After(w.Max)
}

func (w Window) String() string {
	if w.IsEmpty() {
		return "[]"
	}
	return fmt.Sprintf("[%s, %s]", w.Min, w.Max)
}

// RescheduleRequest asks to move an order's delivery to Date, and for slot
// tiers into Slot. Slot is ignored for tiers without slots.
type RescheduleRequest struct {
	OrderID kernel.OrderID
	Date    kernel.Date
	Slot    kernel.Slot
}

// SchedulingPolicy decides which delivery dates a tier admits.
//
// Window rules, inclusive on both ends, with P the pickup date:
//
//	standard        [max(today, P+3d), P+7d]
//	express         [max(today, P+1d), P+7d]
//	timeslot        [max(today, P+1d), P+7d]
//	14day-standard  [max(today, P+3d), P+14d]
//	14day-timeslot  [max(today, P+1d), P+14d]
//
// Once today passes the upper bound the window is empty and every request is
// rejected. That is the intended outcome for late requests on old orders.
type SchedulingPolicy struct {
	catalog *tier.Catalog
}

// NewSchedulingPolicy creates a policy reading windows from catalog.
func NewSchedulingPolicy(catalog *tier.Catalog) (SchedulingPolicy, error) {
	if catalog == nil {
		return SchedulingPolicy{}, errs.NewValueIsRequiredError("catalog")
	}
	return SchedulingPolicy{catalog: catalog}, nil
}

// AdmissibleWindow computes the window of t for an order picked up on pickup,
// as seen on today.
func (p SchedulingPolicy) AdmissibleWindow(t tier.Tier, pickup, today kernel.Date) (Window, error) {
	policy, err := p.catalog.Window(t)
	if err != nil {
		return Window{}, err
	}
	return Window{
		Min: kernel.MaxDate(today, pickup.AddDays(policy.MinOffsetDays)),
		Max: pickup.AddDays(policy.MaxOffsetDays),
	}, nil
}

// Validate accepts (returns nil) a request whose date lies in the order's
// window and, for slot tiers, whose slot is one of the fixed slots. Anything
// else is rejected with OutOfRange.
func (p SchedulingPolicy) Validate(req RescheduleRequest, o order.Order, today kernel.Date) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if !req.OrderID.IsEqual(o.ID()) {
		return errs.NewValueIsInvalidErrorWithCause(
			"order id",
			fmt.Errorf("request for %s checked against order %s", req.OrderID, o.ID()),
		)
	}
	if err := req.Date.Validate(); err != nil {
		return err
	}

	window, err := p.AdmissibleWindow(o.Tier(), o.PickupDate(), today)
	if err != nil {
		return err
	}
	if !window.Contains(req.Date) {
		return decision.Rejectf(decision.OutOfRange, "%s is outside %s", req.Date, window)
	}

	if o.Tier().RequiresSlot() && !req.Slot.IsFixed() {
		return decision.Rejectf(decision.OutOfRange, "%q is not one of the delivery slots", req.Slot.String())
	}

	return nil
}
