// Package paymentrepo persists pending payments, the reserved intent of a
// paid tier upgrade or reschedule top-up.
package paymentrepo

import (
	"time"

	"parcelbot/internal/core/domain/model/kernel"
	"parcelbot/internal/core/domain/model/payment"
	"parcelbot/internal/core/domain/model/tier"

	"github.com/google/uuid"
)

// PaymentDTO represents the database structure for persisting payments.
// ChargeReference is NULL until the gateway accepted the charge; the unique
// index only applies to attached references.
type PaymentDTO struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID         string    `gorm:"type:varchar(64);not null;index"`
	Purpose         string    `gorm:"type:varchar(32);not null"`
	TargetTier      string    `gorm:"type:varchar(32)"`
	Amount          int64     `gorm:"not null"`
	Currency        string    `gorm:"type:char(3);not null"`
	ChargeReference *string   `gorm:"type:varchar(128);uniqueIndex"`
	Status          string    `gorm:"type:varchar(16);not null;index:idx_payments_status_created,priority:1"`
	FailureReason   string
	CreatedAt       time.Time `gorm:"not null;index:idx_payments_status_created,priority:2"`
}

// TableName specifies the database table name for payment entities.
func (PaymentDTO) TableName() string {
	return "payments"
}

func fromDomain(p *payment.Payment) PaymentDTO {
	var reference *string
	if ref := p.ChargeReference(); ref != "" {
		reference = &ref
	}

	var target string
	if p.Purpose() == payment.TierUpgrade {
		target = p.TargetTier().String()
	}

	return PaymentDTO{
		ID:              p.ID().Bytes(),
		OrderID:         p.OrderID().String(),
		Purpose:         p.Purpose().String(),
		TargetTier:      target,
		Amount:          p.Amount(),
		Currency:        p.Currency(),
		ChargeReference: reference,
		Status:          p.Status().String(),
		FailureReason:   p.FailureReason(),
		CreatedAt:       p.CreatedAt().UTC(),
	}
}

func toDomain(dto PaymentDTO) (*payment.Payment, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	orderID, err := kernel.NewOrderID(dto.OrderID)
	if err != nil {
		return nil, err
	}

	purpose, err := payment.ParsePurpose(dto.Purpose)
	if err != nil {
		return nil, err
	}

	target := tier.Unknown
	if purpose == payment.TierUpgrade {
		if target, err = tier.Parse(dto.TargetTier); err != nil {
			return nil, err
		}
	}

	status, err := payment.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	var reference string
	if dto.ChargeReference != nil {
		reference = *dto.ChargeReference
	}

	return payment.RestorePayment(
		id,
		orderID,
		purpose,
		target,
		dto.Amount,
		dto.Currency,
		reference,
		status,
		dto.FailureReason,
		dto.CreatedAt.UTC(),
	)
}
