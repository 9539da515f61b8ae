// Package commands contains the operations that change the ledger: the order
// state machine, the tender award binder and the escrow settlement engine.
// Every command follows the same shape: validate, run inside a unit of work
// with bounded optimistic-concurrency retries, commit, and let the unit of
// work hand the recorded events to the dispatcher.
package commands

import (
	"context"

	"freight/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	TenderRepoFactory interface {
		TenderRepository() ports.TenderRepository
	}

	EscrowRepoFactory interface {
		EscrowRepository() ports.EscrowRepository
	}

	WebhookInboxFactory interface {
		WebhookInbox() ports.WebhookInbox
	}

	// TenderUoW covers operations that touch only a tender and its bids.
	TenderUoW interface {
		TxManager
		TenderRepoFactory
	}

	TenderUoWFactory interface {
		Create() TenderUoW
	}

	// UoW spans every aggregate. Order transitions need it because they
	// reach into the escrow; awards need it because they create an order.
	UoW interface {
		TxManager
		OrderRepoFactory
		TenderRepoFactory
		EscrowRepoFactory
		WebhookInboxFactory
	}

	UoWFactory interface {
		Create() UoW
	}
)
