package kernel

import (
	"errors"
	"fmt"

	"freight/internal/pkg/errs"
	"freight/internal/pkg/guard"
)

// Role is the platform role carried by a principal's token.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

var ErrPrincipalIsNotConstructed = errs.NewValueIsRequiredError("principal must be created via NewPrincipal")

// Principal is an authenticated user acting on behalf of one company.
type Principal struct { //nolint:recvcheck //using for validation
	userID    UUID
	companyID UUID
	role      Role
	guard     guard.ConstructorGuard
}

// NewPrincipal builds a principal. Every principal, admins included, belongs to a company.
func NewPrincipal(userID, companyID UUID, role Role) (Principal, error) {
	if err := errors.Join(
		userID.Validate(),
		companyID.Validate(),
		role.Validate(),
	); err != nil {
		return Principal{}, err
	}

	return Principal{
		userID:    userID,
		companyID: companyID,
		role:      role,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (p Principal) Validate() error {
	return p.guard.Validate(ErrPrincipalIsNotConstructed)
}

func (p Principal) UserID() UUID {
	return p.userID
}

func (p Principal) CompanyID() UUID {
	return p.companyID
}

func (p Principal) Role() Role {
	return p.role
}

func (p Principal) IsAdmin() bool {
	return p.role == RoleAdmin
}

// Represents reports whether the principal acts for company.
func (p Principal) Represents(company UUID) bool {
	return !company.IsZero() && p.companyID.IsEqual(company)
}

func (p Principal) String() string {
	return fmt.Sprintf("user %s (company %s, %s)", p.userID, p.companyID, p.role)
}

func (r Role) Validate() error {
	switch r {
	case RoleMember, RoleAdmin:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a known role", string(r)))
	}
}
