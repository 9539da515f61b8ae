// Package ports declares the contracts between the application core and its
// adapters: repositories and the unit of work over the ledger store, the
// outbox, the payment collaborator and the broadcast transport.
package ports

import (
	"context"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/order"
)

// OrderRepository persists order aggregates. Update is an optimistic write:
// it fails with errs.ErrConcurrencyConflict when the stored version no longer
// matches the aggregate's.
type OrderRepository interface {
	Add(ctx context.Context, aggregate *order.Order) error
	Update(ctx context.Context, aggregate *order.Order) error

	// Get returns errs.ErrObjectNotFound for unknown ids.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)
}
