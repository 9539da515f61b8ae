// Package event defines the domain events raised by the order, tender and
// escrow aggregates.
//
// Every event kind is its own struct with a fixed schema; Kind is the
// discriminator stored next to the JSON payload in the outbox and sent to
// subscribers. Decode turns a stored (kind, payload) pair back into the
// concrete type.
package event
