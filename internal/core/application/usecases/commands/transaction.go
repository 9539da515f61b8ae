package commands

import (
	"context"
	"errors"
	"fmt"

	"freight/internal/pkg/errs"
)

// DefaultConcurrencyRetries is how many times a transition is attempted when
// another writer keeps winning the optimistic-lock race.
const DefaultConcurrencyRetries = 3

type txStarter[U TxManager] interface {
	Create() U
}

// runInTx runs fn in a fresh unit of work and commits it. A version conflict
// re-runs the whole read-check-write cycle up to attempts times before
// surfacing errs.ErrStateConflict.
func runInTx[U TxManager](ctx context.Context, factory txStarter[U], attempts int, fn func(uow U) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for range attempts {
		err := runOnce(ctx, factory, fn)
		if err == nil || !errors.Is(err, errs.ErrConcurrencyConflict) {
			return err
		}
		lastErr = err
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
	return fmt.Errorf("%w: gave up after %d attempts: %s", errs.ErrStateConflict, attempts, lastErr.Error())
}

func runOnce[U TxManager](ctx context.Context, factory txStarter[U], fn func(uow U) error) error {
	uow := factory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := fn(uow); err != nil {
		return err
	}
	return uow.Commit(ctx)
}
