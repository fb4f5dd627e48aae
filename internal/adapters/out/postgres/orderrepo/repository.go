package orderrepo

import (
	"context"
	"errors"
	"fmt"

	"parcelbot/internal/core/domain/model/kernel"
	"parcelbot/internal/core/domain/model/order"
	"parcelbot/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GORM order repository.
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Add saves a newly registered order. An existing order with the same id is
// left untouched and reported as ObjectAlreadyExistsError.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectAlreadyExistsError("order", aggregate.ID().String())
	}

	return nil
}

// Get retrieves an order by ID.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.OrderID) (order.Order, error) {
	if err := id.Validate(); err != nil {
		return order.Order{}, err
	}

	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.String()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return order.Order{}, errs.NewObjectNotFoundError("order", id.String())
		}
		return order.Order{}, err
	}

	return toDomain(dto)
}

// CompareAndSet writes the order only if the stored version still equals
// expectedVersion, and bumps the version on success. A lost race is reported
// as VersionIsInvalidError.
func (r *GormOrderRepository) CompareAndSet(
	ctx context.Context,
	id kernel.OrderID,
	expectedVersion int64,
	aggregate order.Order,
) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	if !aggregate.ID().IsEqual(id) {
		return errs.NewValueIsInvalidErrorWithCause(
			"order",
			fmt.Errorf("aggregate %s written under key %s", aggregate.ID(), id),
		)
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ? AND version = ?", id.String(), expectedVersion).
		Updates(map[string]any{
			"tier":            dto.Tier,
			"pickup_date":     dto.PickupDate,
			"delivery_date":   dto.DeliveryDate,
			"num_reschedules": dto.NumReschedules,
			"version":         expectedVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&OrderDTO{}).Where("id = ?", id.String()).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return errs.NewObjectNotFoundError("order", id.String())
	}

	return errs.NewVersionIsInvalidErrorWithCause(
		"order",
		fmt.Errorf("order %s is no longer at version %d", id, expectedVersion),
	)
}
