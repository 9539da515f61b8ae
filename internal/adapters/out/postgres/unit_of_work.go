// Package postgres provides the GORM-based Unit of Work over the ledger store.
// The Unit of Work maintains the aggregates affected by a business
// transaction, writes their domain events to the outbox in the same
// transaction and hands the committed records to the event notifier.
//
// Usage:
//
//	factory := NewGormUnitOfWorkFactory(db, dispatcher, logger)
//	uow := factory.Create()
//
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer uow.Rollback(ctx)
//
//	if err := uow.OrderRepository().Update(ctx, order); err != nil {
//	    return err
//	}
//	if err := uow.EscrowRepository().Update(ctx, escrow); err != nil {
//	    return err
//	}
//
//	return uow.Commit(ctx)
//
// Each UnitOfWork instance holds one transaction. Goroutines must not share
// an instance.
package postgres

import (
	"context"
	"fmt"

	"freight/internal/adapters/out/postgres/escrowrepo"
	"freight/internal/adapters/out/postgres/orderrepo"
	"freight/internal/adapters/out/postgres/outboxrepo"
	"freight/internal/adapters/out/postgres/tenderrepo"
	"freight/internal/adapters/out/postgres/webhookrepo"
	"freight/internal/core/domain/model/event"
	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/ports"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// trackedAggregate is an aggregate written during the unit of work whose
// events go to the outbox on commit.
type trackedAggregate struct {
	ID        kernel.UUID
	Aggregate ports.Aggregate
}

// GormUnitOfWorkFactory creates UnitOfWork instances sharing one connection
// pool and one notifier.
type GormUnitOfWorkFactory struct {
	db       *gorm.DB
	notifier ports.EventNotifier
	logger   *zap.Logger
}

// NewGormUnitOfWorkFactory creates a factory. notifier may be nil, in which
// case committed events wait in the outbox for the redelivery job.
func NewGormUnitOfWorkFactory(db *gorm.DB, notifier ports.EventNotifier, logger *zap.Logger) *GormUnitOfWorkFactory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GormUnitOfWorkFactory{db: db, notifier: notifier, logger: logger}
}

// Create produces a new UnitOfWork with its own transaction state.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return f.New()
}

// New is Create with the concrete type, for callers that need TrackAggregate.
func (f *GormUnitOfWorkFactory) New() *GormUnitOfWork {
	return &GormUnitOfWork{
		db:                f.db,
		notifier:          f.notifier,
		logger:            f.logger,
		trackedAggregates: make([]trackedAggregate, 0),
	}
}

// GormUnitOfWork coordinates one database transaction across the ledger
// repositories.
type GormUnitOfWork struct {
	db                *gorm.DB
	tx                *gorm.DB
	notifier          ports.EventNotifier
	logger            *zap.Logger
	trackedAggregates []trackedAggregate
}

// Begin opens the transaction. Calling Begin again before Commit or Rollback
// is a no-op.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	uow.tx = uow.db.WithContext(ctx).Begin()
	if uow.tx.Error != nil {
		err := uow.tx.Error
		uow.tx = nil
		return err
	}

	uow.trackedAggregates = uow.trackedAggregates[:0]
	return nil
}

// Commit appends the tracked aggregates' events to the outbox, commits, and
// then notifies. Returns gorm.ErrInvalidTransaction without an open
// transaction.
func (uow *GormUnitOfWork) Commit(ctx context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	events := uow.pendingEvents()
	records, err := outboxrepo.Append(ctx, uow.tx, events)
	if err != nil {
		_ = uow.tx.Rollback().Error
		uow.tx = nil
		return err
	}

	err = uow.tx.Commit().Error
	uow.tx = nil
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	for _, tracked := range uow.trackedAggregates {
		tracked.Aggregate.ClearDomainEvents()
	}
	uow.trackedAggregates = uow.trackedAggregates[:0]

	if len(records) > 0 {
		uow.logger.Debug("ledger transaction committed", zap.Int("events", len(records)))
	}
	if uow.notifier != nil && len(records) > 0 {
		uow.notifier.Notify(context.WithoutCancel(ctx), records)
	}
	return nil
}

// Rollback discards the transaction. Returns gorm.ErrInvalidTransaction
// without an open transaction.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	uow.trackedAggregates = uow.trackedAggregates[:0]
	return err
}

func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}

// OrderRepository returns a repository bound to the open transaction, or to
// the pool when none is open.
func (uow *GormUnitOfWork) OrderRepository() ports.OrderRepository {
	return orderrepo.NewGormOrderRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) TenderRepository() ports.TenderRepository {
	return tenderrepo.NewGormTenderRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) EscrowRepository() ports.EscrowRepository {
	return escrowrepo.NewGormEscrowRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) WebhookInbox() ports.WebhookInbox {
	return webhookrepo.NewGormWebhookInbox(uow.conn())
}

// TrackAggregate registers an aggregate written in this unit of work.
// Repositories call it after every successful Add or Update; an aggregate
// written twice is tracked once.
func (uow *GormUnitOfWork) TrackAggregate(id kernel.UUID, aggregate ports.Aggregate) {
	for _, tracked := range uow.trackedAggregates {
		if tracked.Aggregate == aggregate {
			return
		}
	}
	uow.trackedAggregates = append(uow.trackedAggregates, trackedAggregate{
		ID:        id,
		Aggregate: aggregate,
	})
}

func (uow *GormUnitOfWork) pendingEvents() []event.Event {
	var events []event.Event
	for _, tracked := range uow.trackedAggregates {
		events = append(events, tracked.Aggregate.DomainEvents()...)
	}
	return events
}
