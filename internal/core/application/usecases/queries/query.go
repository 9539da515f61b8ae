// Package queries contains read operations for retrieving ledger state.
// Handlers read straight from the database into flat views and apply the
// caller's authorization in code before returning anything.
package queries

import (
	"errors"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/pkg/guard"

	"github.com/google/uuid"
)

// byIDQuery is a read of one entity on behalf of a principal.
type byIDQuery struct { //nolint:recvcheck //using for validation
	id     kernel.UUID
	viewer kernel.Principal

	guard guard.ConstructorGuard
}

func newByIDQuery(id kernel.UUID, viewer kernel.Principal) (byIDQuery, error) {
	if err := errors.Join(id.Validate(), viewer.Validate()); err != nil {
		return byIDQuery{}, err
	}
	return byIDQuery{id: id, viewer: viewer, guard: guard.NewConstructorGuard()}, nil
}

func (q byIDQuery) validate(notConstructed error) error {
	return q.guard.Validate(notConstructed)
}

func (q byIDQuery) Viewer() kernel.Principal { return q.viewer }

func toID(raw uuid.UUID) (kernel.UUID, error) {
	return kernel.UUIDFromBytes(raw[:])
}

func toOptionalID(raw uuid.NullUUID) (*kernel.UUID, error) {
	if !raw.Valid {
		return nil, nil
	}
	id, err := kernel.UUIDFromBytes(raw.UUID[:])
	if err != nil {
		return nil, err
	}
	return &id, nil
}
