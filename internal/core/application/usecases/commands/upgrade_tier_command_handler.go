package commands

import (
	"context"
	"log/slog"

	"parcelbot/internal/core/domain/model/kernel"
	"parcelbot/internal/core/domain/model/payment"
	"parcelbot/internal/core/domain/model/tier"
	"parcelbot/internal/core/domain/services"
	"parcelbot/internal/core/ports"
)

// UpgradeTierResult describes an accepted upgrade.
type UpgradeTierResult struct {
	Transition services.Transition

	// Committed is true when the upgrade cost nothing and the order already
	// carries the new tier. Otherwise Charge describes what to pay and the
	// tier changes once the payment is confirmed.
	Committed bool
	Charge    ChargeResult
}

// UpgradeTierCommandHandler runs the two-phase upgrade: reserve a pending
// payment for the accepted transition, then request the charge. The order's
// tier is committed later by ConfirmPaymentCommandHandler.
//
// Outcomes:
//   - decision.ErrAlreadyAtTier, decision.ErrAlreadyAtHigherTier: nothing to buy
//   - decision.ErrPaymentFailed: the gateway declined the charge
//   - decision.ErrUnavailable: the store or the gateway failed
//   - errs.ErrObjectNotFound: no such order
type UpgradeTierCommandHandler struct {
	uowFactory UoWFactory
	upgrader   services.TierUpgrader
	catalog    *tier.Catalog
	clock      ports.Clock
	charger    paymentCharger
	logger     *slog.Logger
}

func NewUpgradeTierCommandHandler(
	uowFactory UoWFactory,
	upgrader services.TierUpgrader,
	catalog *tier.Catalog,
	gateway ports.PaymentGateway,
	clock ports.Clock,
	checkoutURLTemplate string,
	logger *slog.Logger,
) UpgradeTierCommandHandler {
	logger = logger.With("component", "upgrade-tier")
	return UpgradeTierCommandHandler{
		uowFactory: uowFactory,
		upgrader:   upgrader,
		catalog:    catalog,
		clock:      clock,
		charger: paymentCharger{
			uowFactory:          uowFactory,
			gateway:             gateway,
			checkoutURLTemplate: checkoutURLTemplate,
			logger:              logger,
		},
		logger: logger,
	}
}

func (h UpgradeTierCommandHandler) Handle(ctx context.Context, cmd UpgradeTierCommand) (UpgradeTierResult, error) {
	if err := cmd.Validate(); err != nil {
		return UpgradeTierResult{}, err
	}

	transition, pending, err := h.reserve(ctx, cmd)
	if err != nil {
		return UpgradeTierResult{}, err
	}

	if pending == nil {
		h.logger.InfoContext(ctx, "free upgrade committed",
			"order_id", transition.OrderID.String(),
			"from", transition.From.String(),
			"to", transition.To.String(),
		)
		return UpgradeTierResult{Transition: transition, Committed: true}, nil
	}

	charge, err := h.charger.charge(ctx, pending)
	if err != nil {
		return UpgradeTierResult{Transition: transition}, err
	}

	return UpgradeTierResult{Transition: transition, Charge: charge}, nil
}

// reserve decides the upgrade against a fresh snapshot. A free upgrade is
// committed right away and no payment is returned.
func (h UpgradeTierCommandHandler) reserve(
	ctx context.Context,
	cmd UpgradeTierCommand,
) (services.Transition, *payment.Payment, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return services.Transition{}, nil, storeError(err)
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orders := uow.OrderRepository()
	current, err := orders.Get(ctx, cmd.OrderID())
	if err != nil {
		return services.Transition{}, nil, storeError(err)
	}

	transition, err := h.upgrader.Upgrade(current, cmd.ToTier())
	if err != nil {
		return services.Transition{}, nil, err
	}

	var pending *payment.Payment
	if transition.RequiresPayment() {
		pending, err = payment.NewTierUpgradePayment(
			kernel.NewUUID(),
			transition.OrderID,
			transition.To,
			transition.PriceDelta,
			h.catalog.Currency(),
			h.clock.Now(),
		)
		if err != nil {
			return services.Transition{}, nil, err
		}
		if err = uow.PaymentRepository().Add(ctx, pending); err != nil {
			return services.Transition{}, nil, storeError(err)
		}
	} else {
		next, commitErr := h.upgrader.Commit(current, transition.To)
		if commitErr != nil {
			return services.Transition{}, nil, commitErr
		}
		if err = orders.CompareAndSet(ctx, current.ID(), current.Version(), next); err != nil {
			return services.Transition{}, nil, storeError(err)
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return services.Transition{}, nil, storeError(err)
	}

	return transition, pending, nil
}
