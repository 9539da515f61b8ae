package ports

import (
	"context"

	"freight/internal/core/domain/model/event"
)

// UnitOfWorkFactory creates new UnitOfWork instances for each request/command.
// This ensures proper isolation between concurrent operations.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork represents a business transaction boundary.
// Events recorded by aggregates passed to a repository's Add or Update are
// written to the outbox inside the transaction and handed to the
// EventNotifier once Commit succeeds.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	OrderRepository() OrderRepository
	TenderRepository() TenderRepository
	EscrowRepository() EscrowRepository
	WebhookInbox() WebhookInbox
}

// Aggregate is what a unit of work tracks: anything that records domain events.
type Aggregate interface {
	DomainEvents() []event.Event
	ClearDomainEvents()
}
