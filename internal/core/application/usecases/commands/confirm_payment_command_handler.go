package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"parcelbot/internal/core/domain/model/decision"
	"parcelbot/internal/core/domain/model/kernel"
	"parcelbot/internal/core/domain/model/order"
	"parcelbot/internal/core/domain/model/payment"
	"parcelbot/internal/core/domain/services"
)

// ConfirmPaymentResult reports what a confirmation did.
type ConfirmPaymentResult struct {
	PaymentID kernel.UUID
	OrderID   kernel.OrderID
	Purpose   payment.Purpose

	// AlreadyConfirmed is true for a replayed confirmation; nothing changed.
	AlreadyConfirmed bool

	// Superseded is true when the order had meanwhile reached a higher tier
	// through another payment. The payment is recorded as confirmed and the
	// order is left as it is.
	Superseded bool
}

// ConfirmPaymentCommandHandler commits the paid change of a confirmed
// payment: the tier of an upgrade or the quota of a top-up. The payment and
// the order are written in one transaction, so a confirmation is applied
// exactly once however often it is delivered.
type ConfirmPaymentCommandHandler struct {
	uowFactory UoWFactory
	upgrader   services.TierUpgrader
	quota      services.RescheduleQuota
	logger     *slog.Logger
}

func NewConfirmPaymentCommandHandler(
	uowFactory UoWFactory,
	upgrader services.TierUpgrader,
	quota services.RescheduleQuota,
	logger *slog.Logger,
) ConfirmPaymentCommandHandler {
	return ConfirmPaymentCommandHandler{
		uowFactory: uowFactory,
		upgrader:   upgrader,
		quota:      quota,
		logger:     logger.With("component", "confirm-payment"),
	}
}

func (h ConfirmPaymentCommandHandler) Handle(ctx context.Context, cmd ConfirmPaymentCommand) (ConfirmPaymentResult, error) {
	if err := cmd.Validate(); err != nil {
		return ConfirmPaymentResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return ConfirmPaymentResult{}, storeError(err)
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	payments := uow.PaymentRepository()
	p, err := payments.GetByChargeReference(ctx, cmd.ChargeReference())
	if err != nil {
		return ConfirmPaymentResult{}, storeError(err)
	}

	result := ConfirmPaymentResult{PaymentID: p.ID(), OrderID: p.OrderID(), Purpose: p.Purpose()}

	already, err := p.Confirm()
	if err != nil {
		return ConfirmPaymentResult{}, err
	}
	if already {
		result.AlreadyConfirmed = true
		return result, nil
	}

	orders := uow.OrderRepository()
	current, err := orders.Get(ctx, p.OrderID())
	if err != nil {
		return ConfirmPaymentResult{}, storeError(err)
	}

	next, err := h.apply(current, p)
	switch {
	case errors.Is(err, decision.ErrAlreadyAtHigherTier):
		result.Superseded = true
		h.logger.WarnContext(ctx, "confirmed upgrade superseded by a higher tier",
			"payment_id", p.ID().String(),
			"order_id", current.ID().String(),
			"paid_tier", p.TargetTier().String(),
			"current_tier", current.Tier().String(),
		)
	case err != nil:
		return ConfirmPaymentResult{}, err
	default:
		if err = orders.CompareAndSet(ctx, current.ID(), current.Version(), next); err != nil {
			return ConfirmPaymentResult{}, storeError(err)
		}
	}

	if err = payments.Update(ctx, p); err != nil {
		return ConfirmPaymentResult{}, storeError(err)
	}

	if err = uow.Commit(ctx); err != nil {
		return ConfirmPaymentResult{}, storeError(err)
	}

	h.logger.InfoContext(ctx, "payment confirmed",
		"payment_id", p.ID().String(),
		"order_id", p.OrderID().String(),
		"purpose", p.Purpose().String(),
	)

	return result, nil
}

func (h ConfirmPaymentCommandHandler) apply(current order.Order, p *payment.Payment) (order.Order, error) {
	switch p.Purpose() {
	case payment.TierUpgrade:
		return h.upgrader.Commit(current, p.TargetTier())
	case payment.RescheduleTopUp:
		return h.quota.TopUp(current)
	default:
		return order.Order{}, fmt.Errorf("payment %s has purpose %s", p.ID(), p.Purpose())
	}
}
