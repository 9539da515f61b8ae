package services

import (
	"freight/internal/core/domain/model/event"
	"freight/internal/core/domain/model/kernel"
)

// ChannelsFor returns the channels an event is broadcast on. The mapping is
// fixed per event kind; duplicates are removed, first occurrence wins.
func ChannelsFor(e event.Event) []Channel {
	var out []Channel
	add := func(kind ChannelKind, ids ...kernel.UUID) {
		for _, id := range ids {
			out = appendUnique(out, NewChannel(kind, id))
		}
	}

	switch ev := e.(type) {
	case event.OrderCreated:
		add(ChannelOrder, ev.OrderID)
		add(ChannelCompany, ev.Parties()...)
	case event.OrderAccepted:
		add(ChannelOrder, ev.OrderID)
		add(ChannelCompany, ev.Parties()...)
	case event.OrderRejected:
		add(ChannelOrder, ev.OrderID)
		add(ChannelCompany, ev.Parties()...)
	case event.OrderStatusChanged:
		add(ChannelOrder, ev.OrderID)
		add(ChannelCompany, ev.Parties()...)
	case event.OrderCancelled:
		add(ChannelOrder, ev.OrderID)
		add(ChannelCompany, ev.Parties()...)
	case event.BidSubmitted:
		add(ChannelCompany, ev.OwnerID, ev.BidderID)
	case event.BidAwarded:
		add(ChannelOrder, ev.OrderID)
		add(ChannelCompany, ev.OwnerID, ev.BidderID)
		add(ChannelCompany, ev.RejectedBidders...)
	case event.TenderClosed:
		add(ChannelCompany, ev.OwnerID)
	case event.EscrowCreated:
		add(ChannelOrder, ev.OrderID)
		add(ChannelCompany, ev.Parties()...)
	case event.EscrowFunded:
		add(ChannelOrder, ev.OrderID)
		add(ChannelCompany, ev.Parties()...)
	case event.EscrowReleasable:
		add(ChannelOrder, ev.OrderID)
		add(ChannelCompany, ev.Parties()...)
	case event.EscrowReleased:
		add(ChannelOrder, ev.OrderID)
		add(ChannelCompany, ev.Parties()...)
	case event.EscrowDisputed:
		add(ChannelOrder, ev.OrderID)
		add(ChannelCompany, ev.Parties()...)
	case event.EscrowRefunded:
		add(ChannelOrder, ev.OrderID)
		add(ChannelCompany, ev.Parties()...)
	case event.EscrowCancelled:
		add(ChannelOrder, ev.OrderID)
		add(ChannelCompany, ev.Parties()...)
	}
	return out
}

func appendUnique(list []Channel, c Channel) []Channel {
	for _, existing := range list {
		if existing.Kind == c.Kind && existing.EntityID.IsEqual(c.EntityID) {
			return list
		}
	}
	return append(list, c)
}
