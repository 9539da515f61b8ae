package order

import (
	"fmt"

	"freight/internal/pkg/errs"
)

// Status is the lifecycle state of a transport order.
//
//	Pending ──> Accepted ──> PickedUp ──> InTransit ──> Delivered ──> Completed
//	   │  │         │           │
//	   │  └─────────┴───────────┴──> Cancelled
//	   └──> Rejected
//
// Status only moves forward along these edges. Cancelled, Rejected and
// Completed are terminal.
type Status int

const (
	Unknown Status = iota
	Pending
	Accepted
	PickedUp
	InTransit
	Delivered
	Completed
	Cancelled
	Rejected
)

var statusNames = map[Status]string{
	Unknown:   "unknown",
	Pending:   "pending",
	Accepted:  "accepted",
	PickedUp:  "picked_up",
	InTransit: "in_transit",
	Delivered: "delivered",
	Completed: "completed",
	Cancelled: "cancelled",
	Rejected:  "rejected",
}

//nolint:exhaustive // terminal statuses have no outgoing edges
var edges = map[Status][]Status{
	Pending:   {Accepted, Rejected, Cancelled},
	Accepted:  {PickedUp, Cancelled},
	PickedUp:  {InTransit, Cancelled},
	InTransit: {Delivered},
	Delivered: {Completed},
}

// ParseStatus maps a wire name such as "in_transit" to its Status.
func ParseStatus(s string) (Status, error) {
	for status, name := range statusNames {
		if status != Unknown && name == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not an order status", s))
}

func (s Status) Validate() error {
	if _, ok := statusNames[s]; !ok || s == Unknown {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return statusNames[Unknown]
}

// CanTransitionTo reports whether target is a direct successor of s.
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range edges[s] {
		if next == target {
			return true
		}
	}
	return false
}

// TransitionTo returns target when the edge exists, otherwise a TransitionError.
func (s Status) TransitionTo(target Status) (Status, error) {
	if !s.CanTransitionTo(target) {
		return s, errs.NewTransitionError("order", s, target)
	}
	return target, nil
}

func (s Status) IsTerminal() bool {
	return s == Completed || s == Cancelled || s == Rejected
}

// GoodsDelivered reports whether the cargo has reached the consignee.
func (s Status) GoodsDelivered() bool {
	return s == Delivered || s == Completed
}

// Cancellable reports whether either party may still cancel.
func (s Status) Cancellable() bool {
	return s.CanTransitionTo(Cancelled)
}
