package escrow

import (
	"slices"

	"freight/internal/core/domain/model/kernel"
)

// ResolutionPolicy decides who may settle a disputed escrow. Refund roles
// also cover refunding a funded escrow without the other party's consent.
type ResolutionPolicy struct {
	ReleaseRoles []kernel.Role
	RefundRoles  []kernel.Role
}

// DefaultResolutionPolicy leaves dispute resolution to admins.
func DefaultResolutionPolicy() ResolutionPolicy {
	return ResolutionPolicy{
		ReleaseRoles: []kernel.Role{kernel.RoleAdmin},
		RefundRoles:  []kernel.Role{kernel.RoleAdmin},
	}
}

func (p ResolutionPolicy) CanResolveRelease(actor kernel.Principal) bool {
	return slices.Contains(p.ReleaseRoles, actor.Role())
}

func (p ResolutionPolicy) CanResolveRefund(actor kernel.Principal) bool {
	return slices.Contains(p.RefundRoles, actor.Role())
}
