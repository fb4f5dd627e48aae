package queries

import (
	"errors"

	"parcelbot/internal/core/domain/model/tier"
	"parcelbot/internal/pkg/guard"
)

var ErrListTiersQueryIsNotConstructed = errors.New(
	"ListTiersQuery must be created via NewListTiersQuery constructor",
)

// ListTiersQuery returns the tier catalog as shown to customers.
type ListTiersQuery struct {
	guard guard.ConstructorGuard
}

func NewListTiersQuery() ListTiersQuery {
	return ListTiersQuery{guard: guard.NewConstructorGuard()}
}

func (q ListTiersQuery) Validate() error {
	return q.guard.Validate(ErrListTiersQueryIsNotConstructed)
}

// TierInfo describes one tier of the catalog.
type TierInfo struct {
	Tier          tier.Tier
	Price         int64
	Currency      string
	RequiresSlot  bool
	MinOffsetDays int
	MaxOffsetDays int
}
