// Package order holds the transport order aggregate and its state machine.
//
// An order is created pending, either by a shipper directly or by a tender
// award, and then moves through accepted, picked_up, in_transit, delivered
// and completed. Pending orders may be rejected by their carrier, and
// pending, accepted or picked_up orders may be cancelled by either party.
// Cancelled orders are kept as tombstones and never reused.
//
// PaymentStatus mirrors the escrow bound to the order and is updated in the
// same transaction as the escrow transition.
package order
