package errs

import (
	"errors"
	"fmt"
)

// Workflow rejections. Every operation that refuses a request returns one of
// these (possibly wrapped) so the caller can report a stable code.
var (
	ErrInvalidTransition  = errors.New("invalid transition")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrStateConflict      = errors.New("state conflict")
	ErrAlreadyAwarded     = errors.New("tender already awarded")
	ErrTenderClosed       = errors.New("tender closed")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrPrematureRelease   = errors.New("premature release")
	ErrPaymentUnavailable = errors.New("payment provider unavailable")
)

// Codes reported to clients.
const (
	CodeInvalidTransition  = "InvalidTransition"
	CodeUnauthorized       = "Unauthorized"
	CodeStateConflict      = "StateConflict"
	CodeAlreadyAwarded     = "AlreadyAwarded"
	CodeTenderClosed       = "TenderClosed"
	CodeInsufficientFunds  = "InsufficientFunds"
	CodePrematureRelease   = "PrematureRelease"
	CodeNotFound           = "NotFound"
	CodePaymentUnavailable = "PaymentUnavailable"
	CodeValidation         = "ValidationFailed"
	CodeInternal           = "InternalError"
)

var codes = []struct {
	err  error
	code string
}{
	{ErrInvalidTransition, CodeInvalidTransition},
	{ErrUnauthorized, CodeUnauthorized},
	{ErrStateConflict, CodeStateConflict},
	{ErrConcurrencyConflict, CodeStateConflict},
	{ErrAlreadyAwarded, CodeAlreadyAwarded},
	{ErrTenderClosed, CodeTenderClosed},
	{ErrInsufficientFunds, CodeInsufficientFunds},
	{ErrPrematureRelease, CodePrematureRelease},
	{ErrObjectNotFound, CodeNotFound},
	{ErrPaymentUnavailable, CodePaymentUnavailable},
	{ErrValueIsInvalid, CodeValidation},
	{ErrValueIsRequired, CodeValidation},
	{ErrValueIsOutOfRange, CodeValidation},
}

// Code maps err to its client-facing code. Unknown errors are CodeInternal.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeInternal
}

// TransitionError describes a refused state change.
type TransitionError struct {
	Entity string
	From   string
	To     string
}

func NewTransitionError(entity string, from, to fmt.Stringer) *TransitionError {
	return &TransitionError{Entity: entity, From: from.String(), To: to.String()}
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s cannot move from %s to %s", ErrInvalidTransition, e.Entity, e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// Unauthorized wraps ErrUnauthorized with the refused action.
func Unauthorized(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnauthorized, fmt.Sprintf(format, args...))
}
