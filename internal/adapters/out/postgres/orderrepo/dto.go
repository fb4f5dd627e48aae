// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// The orders table mirrors the order document of the chat backend: the delivery
// slot is not a column of its own but the hour-of-day of delivery_date.
package orderrepo

import (
	"time"

	"parcelbot/internal/core/domain/model/kernel"
	"parcelbot/internal/core/domain/model/order"
	"parcelbot/internal/core/domain/model/tier"
)

// OrderDTO represents the database structure for persisting order aggregates.
type OrderDTO struct {
	ID             string    `gorm:"type:varchar(64);primaryKey"`
	Tier           string    `gorm:"type:varchar(32);not null"`
	PickupDate     time.Time `gorm:"type:date;not null"`
	DeliveryDate   time.Time `gorm:"type:timestamp;not null"`
	NumReschedules int       `gorm:"not null"`
	Version        int64     `gorm:"not null;default:0"`
}

// TableName specifies the database table name for order entities.
func (OrderDTO) TableName() string {
	return "orders"
}

// fromDomain converts an order aggregate to its row.
func fromDomain(o order.Order) OrderDTO {
	return OrderDTO{
		ID:             o.ID().String(),
		Tier:           o.Tier().String(),
		PickupDate:     o.PickupDate().Time(),
		DeliveryDate:   o.DeliveryTime(),
		NumReschedules: o.ReschedulesRemaining(),
		Version:        o.Version(),
	}
}

// toDomain rebuilds the aggregate from its row using RestoreOrder.
func toDomain(dto OrderDTO) (order.Order, error) {
	id, err := kernel.NewOrderID(dto.ID)
	if err != nil {
		return order.Order{}, err
	}

	t, err := tier.Parse(dto.Tier)
	if err != nil {
		return order.Order{}, err
	}

	delivery := dto.DeliveryDate.UTC()
	slot, err := kernel.SlotStartingAt(delivery.Hour())
	if err != nil {
		return order.Order{}, err
	}

	return order.RestoreOrder(
		id,
		t,
		kernel.DateOf(dto.PickupDate.UTC()),
		kernel.DateOf(delivery),
		slot,
		dto.NumReschedules,
		dto.Version,
	)
}
