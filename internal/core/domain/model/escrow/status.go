package escrow

import (
	"fmt"

	"freight/internal/pkg/errs"
)

// Status of an escrow.
//
//	Created ──> Funded ──> Released
//	   │          │  ▲
//	   │          ▼  │
//	   │       Disputed ──> Refunded
//	   │          Funded ──> Refunded
//	   └──> Cancelled
//
// Released, Refunded and Cancelled are terminal.
type Status int

const (
	StatusUnknown Status = iota
	StatusCreated
	StatusFunded
	StatusReleased
	StatusDisputed
	StatusRefunded
	StatusCancelled
)

var statusNames = map[Status]string{
	StatusUnknown:   "unknown",
	StatusCreated:   "created",
	StatusFunded:    "funded",
	StatusReleased:  "released",
	StatusDisputed:  "disputed",
	StatusRefunded:  "refunded",
	StatusCancelled: "cancelled",
}

//nolint:exhaustive // terminal statuses have no outgoing edges
var edges = map[Status][]Status{
	StatusCreated:  {StatusFunded, StatusCancelled},
	StatusFunded:   {StatusReleased, StatusDisputed, StatusRefunded},
	StatusDisputed: {StatusReleased, StatusRefunded},
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return statusNames[StatusUnknown]
}

func (s Status) Validate() error {
	if _, ok := statusNames[s]; !ok || s == StatusUnknown {
		return errs.NewValueIsInvalidErrorWithCause("escrowStatus", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func ParseStatus(s string) (Status, error) {
	for status, name := range statusNames {
		if status != StatusUnknown && name == s {
			return status, nil
		}
	}
	return StatusUnknown, errs.NewValueIsInvalidErrorWithCause("escrowStatus", fmt.Errorf("%q is not an escrow status", s))
}

func (s Status) IsTerminal() bool {
	return s == StatusReleased || s == StatusRefunded || s == StatusCancelled
}

func (s Status) transitionTo(target Status) (Status, error) {
	for _, next := range edges[s] {
		if next == target {
			return target, nil
		}
	}
	return s, errs.NewTransitionError("escrow", s, target)
}
