package services

import (
	"slices"

	"freight/internal/core/domain/model/kernel"
)

// OrderParties are the facts about an order that gate its channels.
type OrderParties struct {
	ShipperID kernel.UUID
	CarrierID *kernel.UUID
	CreatedBy kernel.UUID
}

// ConversationParties lists who takes part in a conversation.
type ConversationParties struct {
	ParticipantIDs []kernel.UUID
	CompanyIDs     []kernel.UUID
}

// ShipmentLink tells whether a tracked shipment belongs to an order.
// A nil Order means the shipment is public.
type ShipmentLink struct {
	Order *OrderParties
}

// Subject carries whatever was resolved for the channel's entity. Only the
// field matching the channel kind is read.
type Subject struct {
	Order        *OrderParties
	Conversation *ConversationParties
	Shipment     *ShipmentLink
}

type predicate func(p kernel.Principal, c Channel, s Subject) bool

var predicates = map[ChannelKind]predicate{
	ChannelUser: func(p kernel.Principal, c Channel, _ Subject) bool {
		return p.UserID().IsEqual(c.EntityID)
	},
	ChannelCompany: func(p kernel.Principal, c Channel, _ Subject) bool {
		return p.Represents(c.EntityID)
	},
	ChannelConversation: func(p kernel.Principal, _ Channel, s Subject) bool {
		if s.Conversation == nil {
			return false
		}
		return containsID(s.Conversation.ParticipantIDs, p.UserID()) ||
			slices.ContainsFunc(s.Conversation.CompanyIDs, p.Represents)
	},
	ChannelOrder: func(p kernel.Principal, _ Channel, s Subject) bool {
		return s.Order != nil && orderParty(p, *s.Order)
	},
	ChannelTracking: func(p kernel.Principal, _ Channel, s Subject) bool {
		if s.Shipment == nil {
			return false
		}
		if s.Shipment.Order == nil {
			return true
		}
		o := s.Shipment.Order
		return p.Represents(o.ShipperID) || (o.CarrierID != nil && p.Represents(*o.CarrierID))
	},
}

// ChannelAuthorizer decides channel access. It keeps no state and caches
// nothing; callers evaluate it per subscriber with freshly resolved facts.
type ChannelAuthorizer struct{}

func NewChannelAuthorizer() ChannelAuthorizer {
	return ChannelAuthorizer{}
}

// CanObserve reports whether p may subscribe to or receive events on c.
func (ChannelAuthorizer) CanObserve(p kernel.Principal, c Channel, s Subject) bool {
	if p.Validate() != nil {
		return false
	}
	allowed, ok := predicates[c.Kind]
	return ok && allowed(p, c, s)
}

// NeedsSubject reports whether the channel kind depends on stored facts.
func (ChannelAuthorizer) NeedsSubject(kind ChannelKind) bool {
	return kind == ChannelConversation || kind == ChannelOrder || kind == ChannelTracking
}

func orderParty(p kernel.Principal, o OrderParties) bool {
	return p.Represents(o.ShipperID) ||
		(o.CarrierID != nil && p.Represents(*o.CarrierID)) ||
		p.UserID().IsEqual(o.CreatedBy)
}

func containsID(ids []kernel.UUID, id kernel.UUID) bool {
	return slices.ContainsFunc(ids, id.IsEqual)
}
