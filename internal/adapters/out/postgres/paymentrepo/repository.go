package paymentrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"parcelbot/internal/core/domain/model/kernel"
	"parcelbot/internal/core/domain/model/payment"
	"parcelbot/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPaymentRepository implements PaymentRepository using GORM.
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GORM payment repository.
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Add saves a newly reserved payment.
func (r *GormPaymentRepository) Add(ctx context.Context, aggregate *payment.Payment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectAlreadyExistsError("payment", aggregate.ID().String())
	}

	return nil
}

// Update writes the mutable part of a payment: its charge reference, status
// and failure reason. The write only applies while the stored status still
// equals the snapshot's StoredStatus; a lost race is reported as
// VersionIsInvalidError.
func (r *GormPaymentRepository) Update(ctx context.Context, aggregate *payment.Payment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&PaymentDTO{}).
		Where("id = ? AND status = ?", dto.ID, aggregate.StoredStatus().String()).
		Updates(map[string]any{
			"charge_reference": dto.ChargeReference,
			"status":           dto.Status,
			"failure_reason":   dto.FailureReason,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&PaymentDTO{}).Where("id = ?", dto.ID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return errs.NewObjectNotFoundError("payment", aggregate.ID().String())
	}

	return errs.NewVersionIsInvalidErrorWithCause(
		"payment",
		fmt.Errorf("payment %s is no longer %s", aggregate.ID(), aggregate.StoredStatus()),
	)
}

// Get retrieves a payment by ID.
func (r *GormPaymentRepository) Get(ctx context.Context, id kernel.UUID) (*payment.Payment, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	return r.first(ctx, id.String(), "id = ?", id.Bytes())
}

// GetByChargeReference retrieves the payment the gateway knows by reference.
func (r *GormPaymentRepository) GetByChargeReference(ctx context.Context, reference string) (*payment.Payment, error) {
	if reference == "" {
		return nil, errs.NewValueIsRequiredError("charge reference")
	}

	return r.first(ctx, reference, "charge_reference = ?", reference)
}

// GetPendingCreatedBefore returns up to limit pending payments reserved
// before the given instant, oldest first.
func (r *GormPaymentRepository) GetPendingCreatedBefore(
	ctx context.Context,
	before time.Time,
	limit int,
) ([]*payment.Payment, error) {
	var dtos []PaymentDTO
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", payment.Pending.String(), before.UTC()).
		Order("created_at").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	payments := make([]*payment.Payment, 0, len(dtos))
	for _, dto := range dtos {
		p, mapErr := toDomain(dto)
		if mapErr != nil {
			return nil, mapErr
		}
		payments = append(payments, p)
	}

	return payments, nil
}

func (r *GormPaymentRepository) first(ctx context.Context, key string, query string, args ...any) (*payment.Payment, error) {
	var dto PaymentDTO
	if err := r.db.WithContext(ctx).Where(query, args...).First(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("payment", key)
		}
		return nil, err
	}

	return toDomain(dto)
}
