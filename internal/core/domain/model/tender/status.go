package tender

import (
	"fmt"

	"freight/internal/pkg/errs"
)

// Status of a tender.
//
//	Draft ──> Open ──> Awarded
//	            └───> Closed
//
// Only an open tender is awarded. Open tenders that pass their deadline
// without a submitted bid are closed. Draft, Open and Closed tenders may be
// cancelled by the owner.
type Status int

const (
	StatusUnknown Status = iota
	StatusDraft
	StatusOpen
	StatusClosed
	StatusAwarded
	StatusCancelled
)

var statusNames = map[Status]string{
	StatusUnknown:   "unknown",
	StatusDraft:     "draft",
	StatusOpen:      "open",
	StatusClosed:    "closed",
	StatusAwarded:   "awarded",
	StatusCancelled: "cancelled",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return statusNames[StatusUnknown]
}

func (s Status) Validate() error {
	if _, ok := statusNames[s]; !ok || s == StatusUnknown {
		return errs.NewValueIsInvalidErrorWithCause("tenderStatus", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// Awardable reports whether a bid can still be picked.
func (s Status) Awardable() bool {
	return s == StatusOpen
}

func ParseStatus(s string) (Status, error) {
	for status, name := range statusNames {
		if status != StatusUnknown && name == s {
			return status, nil
		}
	}
	return StatusUnknown, errs.NewValueIsInvalidErrorWithCause("tenderStatus", fmt.Errorf("%q is not a tender status", s))
}

// BidStatus of a single bid. Only submitted bids are active.
type BidStatus int

const (
	BidUnknown BidStatus = iota
	BidSubmitted
	BidAccepted
	BidRejected
	BidWithdrawn
)

var bidStatusNames = map[BidStatus]string{
	BidUnknown:   "unknown",
	BidSubmitted: "submitted",
	BidAccepted:  "accepted",
	BidRejected:  "rejected",
	BidWithdrawn: "withdrawn",
}

func (s BidStatus) String() string {
	if name, ok := bidStatusNames[s]; ok {
		return name
	}
	return bidStatusNames[BidUnknown]
}

func (s BidStatus) Validate() error {
	if _, ok := bidStatusNames[s]; !ok || s == BidUnknown {
		return errs.NewValueIsInvalidErrorWithCause("bidStatus", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func ParseBidStatus(s string) (BidStatus, error) {
	for status, name := range bidStatusNames {
		if status != BidUnknown && name == s {
			return status, nil
		}
	}
	return BidUnknown, errs.NewValueIsInvalidErrorWithCause("bidStatus", fmt.Errorf("%q is not a bid status", s))
}
