package ports

import (
	"context"
	"errors"

	"parcelbot/internal/core/domain/model/kernel"
)

// ErrChargeDeclined marks a gateway error that retrying cannot fix. Adapters
// wrap it; callers test with errors.Is.
var ErrChargeDeclined = errors.New("charge declined")

// ChargeRequest is the priced transaction descriptor sent to the gateway.
type ChargeRequest struct {
	// IdempotencyKey lets the gateway drop duplicates of a retried request.
	IdempotencyKey kernel.UUID
	OrderID        kernel.OrderID
	Description    string
	AmountMinor    int64
	Currency       string
}

// PaymentGateway asks an external payment provider for a charge. The outcome
// of the charge arrives later and asynchronously, as a confirmation or a
// failure naming the returned charge reference.
type PaymentGateway interface {
	CreateCharge(ctx context.Context, req ChargeRequest) (chargeReference string, err error)
}
