package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"parcelbot/internal/core/ports"
	"parcelbot/internal/pkg/errs"
)

// ExpireBatchSize bounds the payments expired in one transaction.
const ExpireBatchSize = 100

// ExpirePendingPaymentsCommandHandler marks pending payments older than the
// time-to-live as expired. A confirmation that still arrives later is
// honoured by ConfirmPaymentCommandHandler.
type ExpirePendingPaymentsCommandHandler struct {
	uowFactory PaymentUoWFactory
	clock      ports.Clock
	ttl        time.Duration
}

func NewExpirePendingPaymentsCommandHandler(
	uowFactory PaymentUoWFactory,
	clock ports.Clock,
	ttl time.Duration,
) ExpirePendingPaymentsCommandHandler {
	return ExpirePendingPaymentsCommandHandler{uowFactory: uowFactory, clock: clock, ttl: ttl}
}

// Handle returns the number of payments expired.
func (h ExpirePendingPaymentsCommandHandler) Handle(ctx context.Context, cmd ExpirePendingPaymentsCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	now := h.clock.Now()
	payments := uow.PaymentRepository()
	overdue, err := payments.GetPendingCreatedBefore(ctx, now.Add(-h.ttl), ExpireBatchSize)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, p := range overdue {
		ok, expireErr := p.Expire(now, h.ttl)
		if expireErr != nil {
			return 0, fmt.Errorf("expire payment %s: %w", p.ID(), expireErr)
		}
		if !ok {
			continue
		}
		if err = payments.Update(ctx, p); err != nil {
			// settled since it was read
			if errors.Is(err, errs.ErrVersionIsInvalid) {
				continue
			}
			return 0, err
		}
		expired++
	}

	if err = uow.Commit(ctx); err != nil {
		return 0, err
	}

	return expired, nil
}
