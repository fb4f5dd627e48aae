package queries

import (
	"errors"
	"time"

	"parcelbot/internal/core/domain/model/kernel"
	"parcelbot/internal/core/domain/model/payment"
	"parcelbot/internal/core/domain/model/tier"
	"parcelbot/internal/pkg/guard"
)

var ErrGetPaymentQueryIsNotConstructed = errors.New(
	"GetPaymentQuery must be created via NewGetPaymentQuery constructor",
)

// GetPaymentQuery lets the chat front end poll a payment it started.
type GetPaymentQuery struct {
	paymentID kernel.UUID
	guard     guard.ConstructorGuard
}

func NewGetPaymentQuery(paymentID kernel.UUID) (GetPaymentQuery, error) {
	if err := paymentID.Validate(); err != nil {
		return GetPaymentQuery{}, err
	}
	return GetPaymentQuery{paymentID: paymentID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetPaymentQuery) Validate() error {
	return q.guard.Validate(ErrGetPaymentQueryIsNotConstructed)
}

func (q GetPaymentQuery) PaymentID() kernel.UUID { return q.paymentID }

// GetPaymentQueryResponse is the payment read model. TargetTier is Unknown
// for a top-up and FailureReason is empty unless the charge was declined.
type GetPaymentQueryResponse struct {
	ID              kernel.UUID
	OrderID         kernel.OrderID
	Purpose         payment.Purpose
	TargetTier      tier.Tier
	Amount          int64
	Currency        string
	ChargeReference string
	Status          payment.Status
	FailureReason   string
	CreatedAt       time.Time
}
