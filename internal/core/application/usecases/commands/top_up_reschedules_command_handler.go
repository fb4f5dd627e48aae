package commands

import (
	"context"
	"log/slog"

	"parcelbot/internal/core/domain/model/kernel"
	"parcelbot/internal/core/domain/model/payment"
	"parcelbot/internal/core/domain/model/tier"
	"parcelbot/internal/core/ports"
)

// TopUpReschedulesCommandHandler reserves a top-up payment at the catalog's
// top-up price and requests the charge. The quota is restored by
// ConfirmPaymentCommandHandler. Buying a top-up while free reschedules
// remain is allowed; the quota is reset, never raised above the maximum.
type TopUpReschedulesCommandHandler struct {
	uowFactory UoWFactory
	catalog    *tier.Catalog
	clock      ports.Clock
	charger    paymentCharger
}

func NewTopUpReschedulesCommandHandler(
	uowFactory UoWFactory,
	catalog *tier.Catalog,
	gateway ports.PaymentGateway,
	clock ports.Clock,
	checkoutURLTemplate string,
	logger *slog.Logger,
) TopUpReschedulesCommandHandler {
	return TopUpReschedulesCommandHandler{
		uowFactory: uowFactory,
		catalog:    catalog,
		clock:      clock,
		charger: paymentCharger{
			uowFactory:          uowFactory,
			gateway:             gateway,
			checkoutURLTemplate: checkoutURLTemplate,
			logger:              logger.With("component", "top-up-reschedules"),
		},
	}
}

func (h TopUpReschedulesCommandHandler) Handle(ctx context.Context, cmd TopUpReschedulesCommand) (ChargeResult, error) {
	if err := cmd.Validate(); err != nil {
		return ChargeResult{}, err
	}

	pending, err := h.reserve(ctx, cmd)
	if err != nil {
		return ChargeResult{}, err
	}

	return h.charger.charge(ctx, pending)
}

func (h TopUpReschedulesCommandHandler) reserve(ctx context.Context, cmd TopUpReschedulesCommand) (*payment.Payment, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, storeError(err)
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	current, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, storeError(err)
	}

	pending, err := payment.NewTopUpPayment(
		kernel.NewUUID(),
		current.ID(),
		h.catalog.TopUpPrice(),
		h.catalog.Currency(),
		h.clock.Now(),
	)
	if err != nil {
		return nil, err
	}

	if err = uow.PaymentRepository().Add(ctx, pending); err != nil {
		return nil, storeError(err)
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, storeError(err)
	}

	return pending, nil
}
