package commands_test

import (
	"context"
	"maps"
	"time"

	"freight/internal/core/application/usecases/commands"
	"freight/internal/core/domain/model/escrow"
	"freight/internal/core/domain/model/event"
	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/order"
	"freight/internal/core/domain/model/tender"
	"freight/internal/core/ports"
	"freight/internal/pkg/errs"
)

// memLedger is an in-memory ledger store with the same optimistic version
// checks as the postgres repositories. Writes become visible on Commit.
type memLedger struct {
	orders  map[kernel.UUID]order.Snapshot
	tenders map[kernel.UUID]tender.Snapshot
	escrows map[kernel.UUID]escrow.Snapshot
	inbox   map[string]bool
	events  []event.Event

	// beforeUpdate runs before each Update; tests use it to simulate a
	// concurrent writer.
	beforeUpdate func(l *memLedger)
	commits      int
}

func newMemLedger() *memLedger {
	return &memLedger{
		orders:  map[kernel.UUID]order.Snapshot{},
		tenders: map[kernel.UUID]tender.Snapshot{},
		escrows: map[kernel.UUID]escrow.Snapshot{},
		inbox:   map[string]bool{},
	}
}

func (l *memLedger) Create() commands.UoW            { return &memUoW{ledger: l} }
func (l *memLedger) tenderFactory() tenderUoWFactory { return tenderUoWFactory{l} }

type tenderUoWFactory struct{ l *memLedger }

func (f tenderUoWFactory) Create() commands.TenderUoW { return &memUoW{ledger: f.l} }

func (l *memLedger) order(id kernel.UUID) *order.Order {
	o, err := order.RestoreOrder(l.orders[id])
	if err != nil {
		panic(err)
	}
	return o
}

func (l *memLedger) tender(id kernel.UUID) *tender.Tender {
	t, err := tender.RestoreTender(l.tenders[id])
	if err != nil {
		panic(err)
	}
	return t
}

func (l *memLedger) escrow(id kernel.UUID) *escrow.Escrow {
	e, err := escrow.RestoreEscrow(l.escrows[id])
	if err != nil {
		panic(err)
	}
	return e
}

func (l *memLedger) kinds() []event.Kind {
	kinds := make([]event.Kind, 0, len(l.events))
	for _, e := range l.events {
		kinds = append(kinds, e.Kind())
	}
	return kinds
}

type memUoW struct {
	ledger *memLedger
	active bool

	orders  map[kernel.UUID]order.Snapshot
	tenders map[kernel.UUID]tender.Snapshot
	escrows map[kernel.UUID]escrow.Snapshot
	inbox   map[string]bool
	tracked []ports.Aggregate
}

func (u *memUoW) Begin(context.Context) error {
	u.active = true
	u.orders = maps.Clone(u.ledger.orders)
	u.tenders = maps.Clone(u.ledger.tenders)
	u.escrows = maps.Clone(u.ledger.escrows)
	u.inbox = maps.Clone(u.ledger.inbox)
	u.tracked = nil
	return nil
}

func (u *memUoW) Commit(context.Context) error {
	if !u.active {
		return nil
	}
	u.ledger.orders = u.orders
	u.ledger.tenders = u.tenders
	u.ledger.escrows = u.escrows
	u.ledger.inbox = u.inbox
	for _, a := range u.tracked {
		u.ledger.events = append(u.ledger.events, a.DomainEvents()...)
		a.ClearDomainEvents()
	}
	u.ledger.commits++
	u.active = false
	return nil
}

func (u *memUoW) Rollback(context.Context) error {
	u.active = false
	return nil
}

func (u *memUoW) OrderRepository() ports.OrderRepository   { return memOrders{u} }
func (u *memUoW) TenderRepository() ports.TenderRepository { return memTenders{u} }
func (u *memUoW) EscrowRepository() ports.EscrowRepository { return memEscrows{u} }
func (u *memUoW) WebhookInbox() ports.WebhookInbox         { return memInbox{u} }

func (u *memUoW) simulateConcurrentWriter() {
	if hook := u.ledger.beforeUpdate; hook != nil {
		hook(u.ledger)
		u.orders = maps.Clone(u.ledger.orders)
		u.tenders = maps.Clone(u.ledger.tenders)
		u.escrows = maps.Clone(u.ledger.escrows)
	}
}

type memOrders struct{ u *memUoW }

func (r memOrders) Add(_ context.Context, o *order.Order) error {
	if _, ok := r.u.orders[o.ID()]; ok {
		return errs.NewVersionConflictError("order", o.ID().String(), o.Version())
	}
	r.u.orders[o.ID()] = o.Snapshot()
	r.u.tracked = append(r.u.tracked, o)
	return nil
}

func (r memOrders) Update(_ context.Context, o *order.Order) error {
	r.u.simulateConcurrentWriter()
	stored, ok := r.u.orders[o.ID()]
	if !ok || stored.Version != o.Version() {
		return errs.NewVersionConflictError("order", o.ID().String(), o.Version())
	}
	o.BumpVersion()
	r.u.orders[o.ID()] = o.Snapshot()
	r.u.tracked = append(r.u.tracked, o)
	return nil
}

func (r memOrders) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	s, ok := r.u.orders[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("orderId", id)
	}
	return order.RestoreOrder(s)
}

type memTenders struct{ u *memUoW }

func (r memTenders) Add(_ context.Context, t *tender.Tender) error {
	r.u.tenders[t.ID()] = t.Snapshot()
	r.u.tracked = append(r.u.tracked, t)
	return nil
}

func (r memTenders) Update(_ context.Context, t *tender.Tender) error {
	r.u.simulateConcurrentWriter()
	stored, ok := r.u.tenders[t.ID()]
	if !ok || stored.Version != t.Version() {
		return errs.NewVersionConflictError("tender", t.ID().String(), t.Version())
	}
	t.BumpVersion()
	r.u.tenders[t.ID()] = t.Snapshot()
	r.u.tracked = append(r.u.tracked, t)
	return nil
}

func (r memTenders) Get(_ context.Context, id kernel.UUID) (*tender.Tender, error) {
	s, ok := r.u.tenders[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("tenderId", id)
	}
	return tender.RestoreTender(s)
}

func (r memTenders) ListExpiredOpen(_ context.Context, now time.Time, limit int) ([]*tender.Tender, error) {
	var out []*tender.Tender
	for _, s := range r.u.tenders {
		if s.Status == tender.StatusOpen && !s.SubmissionDeadline.After(now) && !hasSubmittedBid(s) && len(out) < limit {
			t, err := tender.RestoreTender(s)
			if err != nil {
				return nil, err
			}
			out = append(out, t)
		}
	}
	return out, nil
}

func hasSubmittedBid(s tender.Snapshot) bool {
	for _, b := range s.Bids {
		if b.Status == tender.BidSubmitted {
			return true
		}
	}
	return false
}

type memEscrows struct{ u *memUoW }

func (r memEscrows) Add(_ context.Context, e *escrow.Escrow) error {
	r.u.escrows[e.ID()] = e.Snapshot()
	r.u.tracked = append(r.u.tracked, e)
	return nil
}

func (r memEscrows) Update(_ context.Context, e *escrow.Escrow) error {
	r.u.simulateConcurrentWriter()
	stored, ok := r.u.escrows[e.ID()]
	if !ok || stored.Version != e.Version() {
		return errs.NewVersionConflictError("escrow", e.ID().String(), e.Version())
	}
	e.BumpVersion()
	r.u.escrows[e.ID()] = e.Snapshot()
	r.u.tracked = append(r.u.tracked, e)
	return nil
}

func (r memEscrows) Get(_ context.Context, id kernel.UUID) (*escrow.Escrow, error) {
	s, ok := r.u.escrows[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("escrowId", id)
	}
	return escrow.RestoreEscrow(s)
}

func (r memEscrows) GetActiveByOrder(_ context.Context, orderID kernel.UUID) (*escrow.Escrow, error) {
	for _, s := range r.u.escrows {
		if s.OrderID.IsEqual(orderID) && s.Status != escrow.StatusCancelled {
			return escrow.RestoreEscrow(s)
		}
	}
	return nil, errs.NewObjectNotFoundError("orderId", orderID)
}

type memInbox struct{ u *memUoW }

func (r memInbox) Record(_ context.Context, provider, eventID, _ string) (bool, error) {
	key := provider + "/" + eventID
	if r.u.inbox[key] {
		return false, nil
	}
	r.u.inbox[key] = true
	return true, nil
}
