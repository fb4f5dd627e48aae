package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"parcelbot/internal/core/domain/model/decision"
	"parcelbot/internal/core/domain/model/kernel"
	"parcelbot/internal/core/domain/model/payment"
	"parcelbot/internal/core/ports"
)

// ReferencePlaceholder is replaced by the charge reference in the checkout
// URL template.
const ReferencePlaceholder = "{reference}"

// ChargeResult describes a requested charge the customer now has to pay.
type ChargeResult struct {
	PaymentID       kernel.UUID
	Amount          int64
	Currency        string
	ChargeReference string
	CheckoutURL     string
}

// paymentCharger is the second phase of every paid action: with the payment
// already reserved in the store, ask the gateway for a charge and record the
// reference it returns.
type paymentCharger struct {
	uowFactory          UoWFactory
	gateway             ports.PaymentGateway
	checkoutURLTemplate string
	logger              *slog.Logger
}

// charge returns decision.ErrPaymentFailed when the gateway declines and
// decision.ErrUnavailable when it cannot be reached. In the latter case the
// payment stays pending until the expiry job gives up on it.
func (c paymentCharger) charge(ctx context.Context, p *payment.Payment) (ChargeResult, error) {
	reference, err := c.gateway.CreateCharge(ctx, ports.ChargeRequest{
		IdempotencyKey: p.ID(),
		OrderID:        p.OrderID(),
		Description:    p.Description(),
		AmountMinor:    p.Amount(),
		Currency:       p.Currency(),
	})
	if errors.Is(err, ports.ErrChargeDeclined) {
		if _, failErr := p.Fail(err.Error()); failErr == nil {
			if saveErr := c.save(ctx, p); saveErr != nil {
				c.logger.ErrorContext(ctx, "failed to record declined charge",
					"payment_id", p.ID().String(), "error", saveErr)
			}
		}
		return ChargeResult{}, decision.Reject(decision.PaymentFailed, err)
	}
	if err != nil {
		return ChargeResult{}, decision.Reject(decision.Unavailable, err)
	}

	if err = p.AttachCharge(reference); err != nil {
		return ChargeResult{}, err
	}
	if err = c.save(ctx, p); err != nil {
		return ChargeResult{}, storeError(err)
	}

	c.logger.InfoContext(ctx, "charge requested",
		"payment_id", p.ID().String(),
		"order_id", p.OrderID().String(),
		"purpose", p.Purpose().String(),
		"amount", p.Amount(),
		"currency", p.Currency(),
		"charge_reference", reference,
	)

	return ChargeResult{
		PaymentID:       p.ID(),
		Amount:          p.Amount(),
		Currency:        p.Currency(),
		ChargeReference: reference,
		CheckoutURL:     c.checkoutURL(reference),
	}, nil
}

func (c paymentCharger) save(ctx context.Context, p *payment.Payment) error {
	uow := c.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := uow.PaymentRepository().Update(ctx, p); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

func (c paymentCharger) checkoutURL(reference string) string {
	if c.checkoutURLTemplate == "" {
		return ""
	}
	return strings.ReplaceAll(c.checkoutURLTemplate, ReferencePlaceholder, reference)
}
