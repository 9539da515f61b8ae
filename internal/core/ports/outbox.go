package ports

import (
	"context"
	"time"

	"freight/internal/core/domain/model/event"
	"freight/internal/core/domain/model/kernel"
)

// OutboxRecord is one committed domain event awaiting publication.
// ID increases with commit order.
type OutboxRecord struct {
	ID          int64
	EventID     kernel.UUID
	Kind        event.Kind
	AggregateID kernel.UUID
	Payload     []byte
	OccurredAt  time.Time
}

// OutboxStore reads and acknowledges outbox rows outside the writing transaction.
type OutboxStore interface {
	// FetchUnpublished returns up to limit unpublished records created before
	// olderThan, in id order.
	FetchUnpublished(ctx context.Context, olderThan time.Time, limit int) ([]OutboxRecord, error)
	// FetchUnpublishedThrough returns up to limit unpublished records with
	// id <= maxID, in id order.
	FetchUnpublishedThrough(ctx context.Context, maxID int64, limit int) ([]OutboxRecord, error)
	MarkPublished(ctx context.Context, ids []int64) error
}

// EventNotifier is told about records right after their transaction commits.
type EventNotifier interface {
	Notify(ctx context.Context, records []OutboxRecord)
}
