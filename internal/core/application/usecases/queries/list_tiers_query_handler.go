package queries

import (
	"context"

	"parcelbot/internal/core/domain/model/tier"
)

// ListTiersQueryHandler answers from the in-memory catalog; it never touches
// the store.
type ListTiersQueryHandler struct {
	catalog *tier.Catalog
}

func NewListTiersQueryHandler(catalog *tier.Catalog) ListTiersQueryHandler {
	return ListTiersQueryHandler{catalog: catalog}
}

func (h ListTiersQueryHandler) Handle(_ context.Context, query ListTiersQuery) ([]TierInfo, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	tiers := h.catalog.Tiers()
	infos := make([]TierInfo, 0, len(tiers))
	for _, t := range tiers {
		price, err := h.catalog.Price(t)
		if err != nil {
			return nil, err
		}
		window, err := h.catalog.Window(t)
		if err != nil {
			return nil, err
		}
		infos = append(infos, TierInfo{
			Tier:          t,
			Price:         price,
			Currency:      h.catalog.Currency(),
			RequiresSlot:  t.RequiresSlot(),
			MinOffsetDays: window.MinOffsetDays,
			MaxOffsetDays: window.MaxOffsetDays,
		})
	}

	return infos, nil
}
