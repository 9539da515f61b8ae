// Package errs provides the error types and sentinels shared across the
// freight settlement service.
//
// Validation failures use the typed errors (ValueIsRequiredError,
// ValueIsInvalidError, ValueIsOutOfRangeError, ObjectNotFoundError). Each
// carries an optional Cause and unwraps to its sentinel so callers can match
// with errors.Is.
//
// Workflow rejections use the taxonomy sentinels (ErrInvalidTransition,
// ErrUnauthorized, ErrStateConflict, ErrAlreadyAwarded, ErrTenderClosed,
// ErrInsufficientFunds, ErrPrematureRelease, ErrObjectNotFound). Code maps any
// error in that tree to the code reported to clients.
//
// ErrConcurrencyConflict marks a single optimistic-lock miss. Command handlers
// retry on it and surface ErrStateConflict once the retry budget is spent.
package errs
