package queries

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"parcelbot/internal/core/domain/model/kernel"
	"parcelbot/internal/core/domain/model/payment"
	"parcelbot/internal/core/domain/model/tier"
	"parcelbot/internal/pkg/errs"

	"gorm.io/gorm"
)

type GetPaymentQueryHandler struct {
	db *gorm.DB
}

func NewGetPaymentQueryHandler(db *gorm.DB) GetPaymentQueryHandler {
	return GetPaymentQueryHandler{db: db}
}

func (h GetPaymentQueryHandler) Handle(ctx context.Context, query GetPaymentQuery) (GetPaymentQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetPaymentQueryResponse{}, err
	}

	var (
		orderID     string
		purposeName string
		targetTier  sql.NullString
		reference   sql.NullString
		statusName  string
		createdAt   time.Time
		resp        GetPaymentQueryResponse
	)

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			order_id,
			purpose,
			target_tier,
			amount,
			currency,
			charge_reference,
			status,
			failure_reason,
			created_at
		FROM payments
		WHERE id = ?
	`, query.PaymentID().Bytes()).Row()

	err := row.Scan(
		&orderID,
		&purposeName,
		&targetTier,
		&resp.Amount,
		&resp.Currency,
		&reference,
		&statusName,
		&resp.FailureReason,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return GetPaymentQueryResponse{}, errs.NewObjectNotFoundError("payment", query.PaymentID().String())
		}
		return GetPaymentQueryResponse{}, storeError(err)
	}

	resp.ID = query.PaymentID()
	if resp.OrderID, err = kernel.NewOrderID(orderID); err != nil {
		return GetPaymentQueryResponse{}, err
	}
	if resp.Purpose, err = payment.ParsePurpose(purposeName); err != nil {
		return GetPaymentQueryResponse{}, err
	}
	if resp.Purpose == payment.TierUpgrade {
		if resp.TargetTier, err = tier.Parse(targetTier.String); err != nil {
			return GetPaymentQueryResponse{}, err
		}
	}
	if resp.Status, err = payment.ParseStatus(statusName); err != nil {
		return GetPaymentQueryResponse{}, err
	}
	resp.ChargeReference = reference.String
	resp.CreatedAt = createdAt.UTC()

	return resp, nil
}
