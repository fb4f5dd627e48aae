package commands

import (
	"context"
	"log/slog"
)

// FailPaymentCommandHandler records a declined charge. The order is never
// touched: nothing was committed to it while the payment was pending.
type FailPaymentCommandHandler struct {
	uowFactory PaymentUoWFactory
	logger     *slog.Logger
}

func NewFailPaymentCommandHandler(uowFactory PaymentUoWFactory, logger *slog.Logger) FailPaymentCommandHandler {
	return FailPaymentCommandHandler{
		uowFactory: uowFactory,
		logger:     logger.With("component", "fail-payment"),
	}
}

func (h FailPaymentCommandHandler) Handle(ctx context.Context, cmd FailPaymentCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return storeError(err)
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	payments := uow.PaymentRepository()
	p, err := payments.GetByChargeReference(ctx, cmd.ChargeReference())
	if err != nil {
		return storeError(err)
	}

	already, err := p.Fail(cmd.Reason())
	if err != nil {
		return err
	}
	if already {
		return nil
	}

	if err = payments.Update(ctx, p); err != nil {
		return storeError(err)
	}

	if err = uow.Commit(ctx); err != nil {
		return storeError(err)
	}

	h.logger.InfoContext(ctx, "payment failed",
		"payment_id", p.ID().String(),
		"order_id", p.OrderID().String(),
		"reason", p.FailureReason(),
	)

	return nil
}
