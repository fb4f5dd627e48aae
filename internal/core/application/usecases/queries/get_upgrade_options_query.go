package queries

import (
	"errors"

	"parcelbot/internal/core/domain/model/kernel"
	"parcelbot/internal/core/domain/model/tier"
	"parcelbot/internal/pkg/guard"
)

var ErrGetUpgradeOptionsQueryIsNotConstructed = errors.New(
	"GetUpgradeOptionsQuery must be created via NewGetUpgradeOptionsQuery constructor",
)

// GetUpgradeOptionsQuery lists the tiers an order can still move up to.
type GetUpgradeOptionsQuery struct {
	orderID kernel.OrderID
	guard   guard.ConstructorGuard
}

func NewGetUpgradeOptionsQuery(orderID kernel.OrderID) (GetUpgradeOptionsQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetUpgradeOptionsQuery{}, err
	}
	return GetUpgradeOptionsQuery{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetUpgradeOptionsQuery) Validate() error {
	return q.guard.Validate(ErrGetUpgradeOptionsQueryIsNotConstructed)
}

func (q GetUpgradeOptionsQuery) OrderID() kernel.OrderID { return q.orderID }

// UpgradeOption is one tier above the current one and what moving to it costs.
type UpgradeOption struct {
	Tier         tier.Tier
	PriceDelta   int64
	Currency     string
	RequiresSlot bool
}

// GetUpgradeOptionsQueryResponse lists options in tier order. Options is
// empty for an order at the top tier.
type GetUpgradeOptionsQueryResponse struct {
	OrderID     kernel.OrderID
	CurrentTier tier.Tier
	Options     []UpgradeOption
}
