// Package guard provides a marker that lets value objects, aggregates and commands
// tell a properly constructed instance apart from a zero value.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when no specific error is given.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard is embedded in structs that must only be built through their
// constructor. The zero value reports "not constructed".
//
// Example usage:
//
//	var ErrTenderCommandNotConstructed = errors.New("SubmitBidCommand must be created via NewSubmitBidCommand")
//
//	type SubmitBidCommand struct {
//	    tenderID kernel.UUID
//	    guard    guard.ConstructorGuard
//	}
//
//	func (c SubmitBidCommand) Validate() error {
//	    return c.guard.Validate(ErrTenderCommandNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard marks the enclosing object as constructed.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns validationError (or ErrDefaultConstructorGuard when it is nil)
// if the guard is a zero value.
func (g ConstructorGuard) Validate(validationError error) error {
	if validationError == nil {
		validationError = ErrDefaultConstructorGuard
	}
	if !g.isConstructed {
		return validationError
	}
	return nil
}
