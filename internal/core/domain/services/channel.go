package services

import (
	"fmt"
	"strings"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/pkg/errs"
)

type ChannelKind string

const (
	ChannelUser         ChannelKind = "user"
	ChannelCompany      ChannelKind = "company"
	ChannelConversation ChannelKind = "conversation"
	ChannelOrder        ChannelKind = "order"
	ChannelTracking     ChannelKind = "tracking"
)

// privatePrefix is accepted on input because socket clients send channel
// names the way they subscribe to them.
const privatePrefix = "private-"

// Channel is a notification scope bound to one entity.
type Channel struct {
	Kind     ChannelKind
	EntityID kernel.UUID
}

func NewChannel(kind ChannelKind, id kernel.UUID) Channel {
	return Channel{Kind: kind, EntityID: id}
}

// ParseChannel reads names such as "order.{uuid}" or "private-order.{uuid}".
func ParseChannel(name string) (Channel, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(name), privatePrefix)
	kind, id, ok := strings.Cut(raw, ".")
	if !ok {
		return Channel{}, errs.NewValueIsInvalidErrorWithCause("channel", fmt.Errorf("%q has no entity id", name))
	}

	ck := ChannelKind(kind)
	if _, known := predicates[ck]; !known {
		return Channel{}, errs.NewValueIsInvalidErrorWithCause("channel", fmt.Errorf("%q is not a channel kind", kind))
	}
	entityID, err := kernel.UUIDFromString(id)
	if err != nil {
		return Channel{}, errs.NewValueIsInvalidErrorWithCause("channel", err)
	}
	if err = entityID.Validate(); err != nil {
		return Channel{}, err
	}
	return Channel{Kind: ck, EntityID: entityID}, nil
}

// Name is the wire name, e.g. "company.3f6c...".
func (c Channel) Name() string {
	return string(c.Kind) + "." + c.EntityID.String()
}

func (c Channel) String() string {
	return c.Name()
}
