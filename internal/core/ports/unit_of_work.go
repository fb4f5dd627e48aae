package ports

import (
	"context"
)

// UnitOfWorkFactory hands out a fresh UnitOfWork per use case call.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork is one store transaction. Orders and payments written through
// its repositories become visible together on Commit or not at all.
type UnitOfWork interface {
	Begin(ctx context.Context) error

	// Commit fails when no transaction is open.
	Commit(ctx context.Context) error

	// Rollback fails when no transaction is open. Calling it after Commit is
	// harmless and is how handlers clean up on every return path.
	Rollback(ctx context.Context) error

	OrderRepository() OrderRepository
	PaymentRepository() PaymentRepository
}
