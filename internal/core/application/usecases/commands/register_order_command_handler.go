package commands

import (
	"context"

	"parcelbot/internal/core/domain/model/decision"
	"parcelbot/internal/core/domain/model/order"
	"parcelbot/internal/core/domain/services"
)

// RegisterOrderCommandHandler stores newly booked shipments with a full
// reschedule quota.
type RegisterOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	policy     services.SchedulingPolicy
}

func NewRegisterOrderCommandHandler(
	uowFactory OrderUoWFactory,
	policy services.SchedulingPolicy,
) RegisterOrderCommandHandler {
	return RegisterOrderCommandHandler{uowFactory: uowFactory, policy: policy}
}

// Handle builds the order and adds it to the store. The delivery date must
// fall inside the tier's window counted from pickup, otherwise the order is
// rejected with decision.OutOfRange. A second registration of the same id
// fails with errs.ErrObjectExists.
func (h RegisterOrderCommandHandler) Handle(ctx context.Context, cmd RegisterOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	o, err := order.NewOrder(cmd.OrderID(), cmd.Tier(), cmd.Pickup(), cmd.Delivery(), cmd.Slot())
	if err != nil {
		return err
	}

	// registration happens at pickup at the latest, so today does not clamp
	window, err := h.policy.AdmissibleWindow(o.Tier(), o.PickupDate(), o.PickupDate())
	if err != nil {
		return err
	}
	if !window.Contains(o.DeliveryDate()) {
		return decision.Rejectf(decision.OutOfRange, "%s is outside %s", o.DeliveryDate(), window)
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return storeError(err)
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, o); err != nil {
		return storeError(err)
	}

	if err = uow.Commit(ctx); err != nil {
		return storeError(err)
	}

	return nil
}
