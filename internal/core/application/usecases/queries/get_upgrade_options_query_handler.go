package queries

import (
	"context"

	"parcelbot/internal/core/domain/services"

	"gorm.io/gorm"
)

type GetUpgradeOptionsQueryHandler struct {
	db       *gorm.DB
	upgrader services.TierUpgrader
	currency string
}

func NewGetUpgradeOptionsQueryHandler(
	db *gorm.DB,
	upgrader services.TierUpgrader,
	currency string,
) GetUpgradeOptionsQueryHandler {
	return GetUpgradeOptionsQueryHandler{db: db, upgrader: upgrader, currency: currency}
}

func (h GetUpgradeOptionsQueryHandler) Handle(
	ctx context.Context,
	query GetUpgradeOptionsQuery,
) (GetUpgradeOptionsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetUpgradeOptionsQueryResponse{}, err
	}

	o, err := loadOrder(ctx, h.db, query.OrderID())
	if err != nil {
		return GetUpgradeOptionsQueryResponse{}, err
	}

	transitions, err := h.upgrader.Options(o)
	if err != nil {
		return GetUpgradeOptionsQueryResponse{}, err
	}

	options := make([]UpgradeOption, 0, len(transitions))
	for _, t := range transitions {
		options = append(options, UpgradeOption{
			Tier:         t.To,
			PriceDelta:   t.PriceDelta,
			Currency:     h.currency,
			RequiresSlot: t.To.RequiresSlot(),
		})
	}

	return GetUpgradeOptionsQueryResponse{
		OrderID:     o.ID(),
		CurrentTier: o.Tier(),
		Options:     options,
	}, nil
}
