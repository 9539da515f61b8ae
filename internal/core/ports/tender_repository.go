package ports

import (
	"context"
	"time"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/tender"
)

// TenderRepository persists tenders together with their bids.
type TenderRepository interface {
	Add(ctx context.Context, aggregate *tender.Tender) error
	Update(ctx context.Context, aggregate *tender.Tender) error
	Get(ctx context.Context, id kernel.UUID) (*tender.Tender, error)

	// ListExpiredOpen returns open tenders whose submission deadline is not after now.
	ListExpiredOpen(ctx context.Context, now time.Time, limit int) ([]*tender.Tender, error)
}
