package order

import (
	"fmt"

	"freight/internal/pkg/errs"
)

// PaymentStatus mirrors the state of the order's escrow.
type PaymentStatus string

const (
	PaymentUnpaid        PaymentStatus = "unpaid"
	PaymentEscrowPending PaymentStatus = "escrow_pending"
	PaymentEscrowed      PaymentStatus = "escrowed"
	PaymentDisputed      PaymentStatus = "disputed"
	PaymentPaid          PaymentStatus = "paid"
	PaymentRefunded      PaymentStatus = "refunded"
)

func (p PaymentStatus) Validate() error {
	switch p {
	case PaymentUnpaid, PaymentEscrowPending, PaymentEscrowed, PaymentDisputed, PaymentPaid, PaymentRefunded:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("paymentStatus", fmt.Errorf("%q is not a payment status", string(p)))
	}
}

func (p PaymentStatus) String() string {
	return string(p)
}
