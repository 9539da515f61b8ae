package ports

import (
	"context"

	"freight/internal/core/domain/model/escrow"
	"freight/internal/core/domain/model/kernel"
)

type EscrowRepository interface {
	Add(ctx context.Context, aggregate *escrow.Escrow) error
	Update(ctx context.Context, aggregate *escrow.Escrow) error
	Get(ctx context.Context, id kernel.UUID) (*escrow.Escrow, error)

	// GetActiveByOrder returns the order's escrow that is not cancelled, or
	// errs.ErrObjectNotFound.
	GetActiveByOrder(ctx context.Context, orderID kernel.UUID) (*escrow.Escrow, error)
}
