// Package ports defines the contracts between the decision core and the
// infrastructure around it: the order and payment stores, the unit of work,
// the payment gateway and the clock.
package ports

import (
	"context"

	"parcelbot/internal/core/domain/model/kernel"
	"parcelbot/internal/core/domain/model/order"
)

// OrderRepository is the order store. Orders are keyed by their opaque id and
// carry a version for optimistic concurrency.
type OrderRepository interface {
	// Add persists a newly registered order at version 0.
	// Returns errs.ObjectAlreadyExistsError when the id is taken.
	Add(ctx context.Context, aggregate order.Order) error

	// Get retrieves an order snapshot.
	// Returns errs.ObjectNotFoundError when no such order exists.
	Get(ctx context.Context, id kernel.OrderID) (order.Order, error)

	// CompareAndSet replaces the stored order with aggregate if, and only if,
	// the stored version still equals expectedVersion. The stored version is
	// then expectedVersion+1.
	//
	// Two concurrent read-modify-write cycles on the same order cannot both
	// succeed: the loser gets errs.VersionIsInvalidError and must re-read.
	//
	// Example:
	//   next, err := current.Apply(order.ConsumeReschedule{})
	//   if err != nil {
	//       return err
	//   }
	//   if err := repo.CompareAndSet(ctx, current.ID(), current.Version(), next); err != nil {
	//       return err // errs.ErrVersionIsInvalid: someone else won, retry
	//   }
	CompareAndSet(ctx context.Context, id kernel.OrderID, expectedVersion int64, aggregate order.Order) error
}
