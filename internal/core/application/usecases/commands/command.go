package commands

import (
	"errors"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/pkg/guard"
)

// targetCommand is the common part of commands that act on one existing
// aggregate on behalf of a principal.
type targetCommand struct { //nolint:recvcheck //using for validation
	id    kernel.UUID
	actor kernel.Principal

	guard guard.ConstructorGuard
}

func newTargetCommand(id kernel.UUID, actor kernel.Principal) (targetCommand, error) {
	if err := errors.Join(
		id.Validate(),
		actor.Validate(),
	); err != nil {
		return targetCommand{}, err
	}

	return targetCommand{
		id:    id,
		actor: actor,
		guard: guard.NewConstructorGuard(),
	}, nil
}

func (c targetCommand) validate(notConstructed error) error {
	return c.guard.Validate(notConstructed)
}

// Actor returns the principal performing the operation.
func (c targetCommand) Actor() kernel.Principal {
	return c.actor
}
