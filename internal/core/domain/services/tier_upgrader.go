package services

import (
	"fmt"

	"parcelbot/internal/core/domain/model/decision"
	"parcelbot/internal/core/domain/model/kernel"
	"parcelbot/internal/core/domain/model/order"
	"parcelbot/internal/core/domain/model/tier"
	"parcelbot/internal/pkg/errs"
)

// Transition is an accepted upgrade, priced. It is the descriptor handed to
// the payment gateway; the order keeps its tier until the payment is
// confirmed.
type Transition struct {
	OrderID    kernel.OrderID
	From       tier.Tier
	To         tier.Tier
	PriceDelta int64
}

// RequiresPayment reports whether the upgrade costs anything.
func (t Transition) RequiresPayment() bool {
	return t.PriceDelta > 0
}

// TierUpgrader is the tier upgrade state machine. Its states are the tiers,
// it only moves up, and 14day-timeslot is terminal.
type TierUpgrader struct {
	catalog *tier.Catalog
}

// NewTierUpgrader creates an upgrader pricing transitions from catalog.
func NewTierUpgrader(catalog *tier.Catalog) (TierUpgrader, error) {
	if catalog == nil {
		return TierUpgrader{}, errs.NewValueIsRequiredError("catalog")
	}
	return TierUpgrader{catalog: catalog}, nil
}

// Upgrade validates moving o to to.
//
// Returns:
//   - Transition with PriceDelta = price(to) - price(current) when to ranks higher
//   - AlreadyAtTier rejection when to is the current tier
//   - AlreadyAtHigherTier rejection when to ranks lower
func (u TierUpgrader) Upgrade(o order.Order, to tier.Tier) (Transition, error) {
	if err := o.Validate(); err != nil {
		return Transition{}, err
	}
	if err := to.Validate(); err != nil {
		return Transition{}, err
	}

	from := o.Tier()
	if to == from {
		return Transition{}, decision.Rejectf(decision.AlreadyAtTier, "order is already at %s", to)
	}
	if to.Less(from) {
		return Transition{}, decision.Rejectf(decision.AlreadyAtHigherTier, "order is at %s, above %s", from, to)
	}

	fromPrice, err := u.catalog.Price(from)
	if err != nil {
		return Transition{}, err
	}
	toPrice, err := u.catalog.Price(to)
	if err != nil {
		return Transition{}, err
	}

	delta := toPrice - fromPrice
	if delta < 0 {
		// NewCatalog rejects such price lists.
		return Transition{}, fmt.Errorf("catalog prices %s below %s", to, from)
	}

	return Transition{OrderID: o.ID(), From: from, To: to, PriceDelta: delta}, nil
}

// Options lists every accepted transition from o's current tier, in rank
// order. It is empty for the terminal tier.
func (u TierUpgrader) Options(o order.Order) ([]Transition, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	var options []Transition
	for _, to := range u.catalog.Above(o.Tier()) {
		t, err := u.Upgrade(o, to)
		if err != nil {
			return nil, err
		}
		options = append(options, t)
	}
	return options, nil
}

// Commit applies a confirmed transition. It is idempotent: committing a
// transition the order has already reached changes nothing.
func (u TierUpgrader) Commit(o order.Order, to tier.Tier) (order.Order, error) {
	return o.Apply(order.SetTier{Tier: to})
}
