package commands

import (
	"context"
	"log/slog"

	"parcelbot/internal/core/domain/model/kernel"
	"parcelbot/internal/core/domain/services"
	"parcelbot/internal/core/ports"
)

// RescheduleOrderResult is the order's schedule after an accepted reschedule.
type RescheduleOrderResult struct {
	DeliveryDate         kernel.Date
	Slot                 kernel.Slot
	ReschedulesRemaining int

	// Free is true when the request chose the slot after a slot-tier upgrade
	// and did not use up a reschedule.
	Free bool
}

// RescheduleOrderCommandHandler runs a reschedule request through the
// rescheduler and writes the result back with compare-and-set.
//
// Outcomes:
//   - decision.ErrQuotaExhausted: no free reschedules, offer a top-up
//   - decision.ErrOutOfRange: date or slot not admissible
//   - decision.ErrUnavailable: the store failed
//   - errs.ErrObjectNotFound: no such order
//   - errs.ErrVersionIsInvalid: a concurrent change won, retry
type RescheduleOrderCommandHandler struct {
	uowFactory  OrderUoWFactory
	rescheduler services.Rescheduler
	clock       ports.Clock
	logger      *slog.Logger
}

func NewRescheduleOrderCommandHandler(
	uowFactory OrderUoWFactory,
	rescheduler services.Rescheduler,
	clock ports.Clock,
	logger *slog.Logger,
) RescheduleOrderCommandHandler {
	return RescheduleOrderCommandHandler{
		uowFactory:  uowFactory,
		rescheduler: rescheduler,
		clock:       clock,
		logger:      logger.With("component", "reschedule-order"),
	}
}

func (h RescheduleOrderCommandHandler) Handle(ctx context.Context, cmd RescheduleOrderCommand) (RescheduleOrderResult, error) {
	if err := cmd.Validate(); err != nil {
		return RescheduleOrderResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return RescheduleOrderResult{}, storeError(err)
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OrderRepository()
	current, err := repo.Get(ctx, cmd.OrderID())
	if err != nil {
		return RescheduleOrderResult{}, storeError(err)
	}

	req := services.RescheduleRequest{OrderID: cmd.OrderID(), Date: cmd.Date(), Slot: cmd.Slot()}
	next, free, err := h.rescheduler.Reschedule(current, req, h.clock.Today())
	if err != nil {
		return RescheduleOrderResult{}, err
	}

	if err = repo.CompareAndSet(ctx, current.ID(), current.Version(), next); err != nil {
		return RescheduleOrderResult{}, storeError(err)
	}

	if err = uow.Commit(ctx); err != nil {
		return RescheduleOrderResult{}, storeError(err)
	}

	h.logger.InfoContext(ctx, "order rescheduled",
		"order_id", next.ID().String(),
		"delivery_date", next.DeliveryDate().String(),
		"slot", next.Slot().String(),
		"reschedules_remaining", next.ReschedulesRemaining(),
		"free", free,
	)

	return RescheduleOrderResult{
		DeliveryDate:         next.DeliveryDate(),
		Slot:                 next.Slot(),
		ReschedulesRemaining: next.ReschedulesRemaining(),
		Free:                 free,
	}, nil
}
