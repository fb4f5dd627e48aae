package ports

import (
	"context"
	"time"

	"parcelbot/internal/core/domain/model/kernel"
	"parcelbot/internal/core/domain/model/payment"
)

// PaymentRepository stores pending payments and their outcomes.
type PaymentRepository interface {
	// Add persists a newly reserved payment.
	Add(ctx context.Context, aggregate *payment.Payment) error

	// Update persists status, charge reference and failure reason.
	// Returns errs.ObjectNotFoundError when the payment does not exist.
	Update(ctx context.Context, aggregate *payment.Payment) error

	// Get retrieves a payment by id.
	Get(ctx context.Context, id kernel.UUID) (*payment.Payment, error)

	// GetByChargeReference retrieves the payment a gateway event refers to.
	GetByChargeReference(ctx context.Context, reference string) (*payment.Payment, error)

	// GetPendingCreatedBefore lists at most limit pending payments reserved
	// before the given instant, oldest first.
	GetPendingCreatedBefore(ctx context.Context, before time.Time, limit int) ([]*payment.Payment, error)
}
