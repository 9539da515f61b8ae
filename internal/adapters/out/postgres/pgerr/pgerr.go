// Package pgerr turns PostgreSQL constraint violations into ledger errors.
package pgerr

import (
	"errors"
	"fmt"

	"freight/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// Constraints whose violation means a concurrent writer got there first.
const (
	OneAcceptedBid     = "ux_tender_bids_one_accepted"
	OneActiveBid       = "ux_tender_bids_active_bidder"
	OneActiveEscrow    = "ux_escrows_active_order"
	WebhookEventUnique = "payment_webhook_events_pkey"
)

var byConstraint = map[string]error{
	OneAcceptedBid:  errs.ErrAlreadyAwarded,
	OneActiveBid:    errs.ErrConcurrencyConflict,
	OneActiveEscrow: errs.ErrConcurrencyConflict,
}

// IsDuplicate reports whether err is a unique key violation.
func IsDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// Constraint returns the violated constraint name, or "".
func Constraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

// Map wraps unique violations of the ledger's invariant indexes with the
// matching sentinel. Other errors are returned unchanged.
func Map(err error) error {
	if err == nil || !IsDuplicate(err) {
		return err
	}
	name := Constraint(err)
	if sentinel, ok := byConstraint[name]; ok {
		return fmt.Errorf("%w: %s violated", sentinel, name)
	}
	return err
}
