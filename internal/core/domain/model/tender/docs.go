// Package tender implements tenders and their bids.
//
// Carriers submit at most one active bid per tender; the owner awards exactly
// one of them, after which the tender is awarded and a transport order is
// created for the winning carrier.
package tender
