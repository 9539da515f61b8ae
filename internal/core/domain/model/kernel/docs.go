// Package kernel provides the value objects shared by every aggregate of the
// settlement core.
//
// The package includes:
//   - UUID: identifier value object wrapping github.com/google/uuid
//   - Money: fixed-point amount plus ISO currency, backed by shopspring/decimal
//   - Principal: the authenticated user acting on behalf of a company
//   - Route and Cargo: the transport terms copied from a tender onto an order
//
// All values are immutable and must be built through their constructors; the
// zero values fail validation.
package kernel
