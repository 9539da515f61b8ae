// Package dispatch publishes committed domain events to the broadcast
// transport.
//
// Records are read back from the outbox in id order, fanned out to the
// channels each event concerns and addressed only to the subscribers the
// channel authorizer admits at publication time. A record is marked published
// once every one of its channels was handed to the transport. The first
// failing record stops the batch so later records never overtake it; the
// redelivery job picks it up again.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"freight/internal/core/domain/model/event"
	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/services"
	"freight/internal/core/ports"
	"freight/internal/pkg/errs"
	"freight/internal/pkg/metrics"

	"go.uber.org/zap"
)

const drainBatch = 100

type Dispatcher struct {
	transport  ports.Transport
	directory  ports.SubscriberDirectory
	resolver   ports.SubjectResolver
	outbox     ports.OutboxStore
	authorizer services.ChannelAuthorizer
	logger     *zap.Logger
	metrics    *metrics.Metrics

	// mu serializes publication so records leave in outbox id order.
	mu sync.Mutex
}

func NewDispatcher(
	transport ports.Transport,
	directory ports.SubscriberDirectory,
	resolver ports.SubjectResolver,
	outbox ports.OutboxStore,
	logger *zap.Logger,
	m *metrics.Metrics,
) (*Dispatcher, error) {
	if transport == nil {
		return nil, errs.NewValueIsRequiredError("transport")
	}
	if directory == nil {
		return nil, errs.NewValueIsRequiredError("directory")
	}
	if resolver == nil {
		return nil, errs.NewValueIsRequiredError("resolver")
	}
	if outbox == nil {
		return nil, errs.NewValueIsRequiredError("outbox")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.NewUnregistered()
	}

	return &Dispatcher{
		transport:  transport,
		directory:  directory,
		resolver:   resolver,
		outbox:     outbox,
		authorizer: services.NewChannelAuthorizer(),
		logger:     logger,
		metrics:    m,
	}, nil
}

var _ ports.EventNotifier = (*Dispatcher)(nil)

// Notify is called after a commit. It drains every unpublished record up to
// the newest one committed, so an earlier commit still waiting for its own
// Notify is published first.
func (d *Dispatcher) Notify(ctx context.Context, records []ports.OutboxRecord) {
	if len(records) == 0 {
		return
	}
	var maxID int64
	for _, r := range records {
		maxID = max(maxID, r.ID)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for {
		pending, err := d.outbox.FetchUnpublishedThrough(ctx, maxID, drainBatch)
		if err != nil {
			d.logger.Warn("outbox read failed, leaving records to redelivery",
				zap.Int64("through_id", maxID), zap.Error(err))
			return
		}
		published, err := d.publishBatch(ctx, pending)
		if err != nil || published < drainBatch {
			return
		}
	}
}

// Redeliver publishes records that stayed unpublished since before olderThan.
// It returns how many were published.
func (d *Dispatcher) Redeliver(ctx context.Context, olderThan time.Time, limit int) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	pending, err := d.outbox.FetchUnpublished(ctx, olderThan, limit)
	if err != nil {
		return 0, fmt.Errorf("fetch unpublished outbox records: %w", err)
	}
	published, err := d.publishBatch(ctx, pending)
	d.metrics.OutboxRedelivered.Add(float64(published))
	return published, err
}

// publishBatch publishes records in order until the first failure and marks
// the published prefix.
func (d *Dispatcher) publishBatch(ctx context.Context, records []ports.OutboxRecord) (int, error) {
	done := make([]int64, 0, len(records))
	var failure error
	for _, r := range records {
		if err := d.publishRecord(ctx, r); err != nil {
			d.metrics.PublishFailures.WithLabelValues(string(r.Kind)).Inc()
			d.logger.Warn("event publish failed",
				zap.Int64("outbox_id", r.ID),
				zap.String("event_id", r.EventID.String()),
				zap.String("kind", string(r.Kind)),
				zap.Error(err))
			failure = err
			break
		}
		done = append(done, r.ID)
	}

	if len(done) > 0 {
		if err := d.outbox.MarkPublished(ctx, done); err != nil {
			d.logger.Warn("marking outbox records published failed", zap.Int("count", len(done)), zap.Error(err))
			return len(done), errors.Join(failure, err)
		}
	}
	return len(done), failure
}

func (d *Dispatcher) publishRecord(ctx context.Context, r ports.OutboxRecord) error {
	e, err := event.Decode(r.Kind, r.Payload)
	if err != nil {
		// An undecodable record would block the outbox forever.
		d.logger.Error("dropping undecodable outbox record",
			zap.Int64("outbox_id", r.ID), zap.String("kind", string(r.Kind)), zap.Error(err))
		return nil
	}

	for _, ch := range services.ChannelsFor(e) {
		recipients, err := d.recipients(ctx, ch)
		if err != nil {
			return fmt.Errorf("recipients of %s: %w", ch.Name(), err)
		}
		if len(recipients) == 0 {
			continue
		}

		msg := ports.BroadcastMessage{
			Channel:    ch.Name(),
			Event:      r.Kind,
			EventID:    r.EventID,
			Data:       r.Payload,
			Recipients: recipients,
		}
		if err = d.transport.Publish(ctx, msg); err != nil {
			return fmt.Errorf("publish on %s: %w", ch.Name(), err)
		}
		d.metrics.EventsPublished.WithLabelValues(string(r.Kind)).Inc()
	}
	return nil
}

// recipients evaluates the authorizer for every current subscriber of ch with
// facts resolved now, not when the subscription was made.
func (d *Dispatcher) recipients(ctx context.Context, ch services.Channel) ([]kernel.UUID, error) {
	subscribers, err := d.directory.Subscribers(ctx, ch.Name())
	if err != nil {
		return nil, err
	}
	if len(subscribers) == 0 {
		return nil, nil
	}

	subject, err := d.subject(ctx, ch)
	if err != nil {
		return nil, err
	}

	recipients := make([]kernel.UUID, 0, len(subscribers))
	for _, p := range subscribers {
		if !d.authorizer.CanObserve(p, ch, subject) {
			d.metrics.DeliveriesDropped.Inc()
			continue
		}
		recipients = append(recipients, p.UserID())
	}
	return recipients, nil
}

// subject loads the stored facts for ch. An unknown entity yields an empty
// subject, which the authorizer rejects.
func (d *Dispatcher) subject(ctx context.Context, ch services.Channel) (services.Subject, error) {
	var s services.Subject
	if !d.authorizer.NeedsSubject(ch.Kind) {
		return s, nil
	}

	var err error
	//nolint:exhaustive // user and company channels need no stored facts
	switch ch.Kind {
	case services.ChannelOrder:
		var parties services.OrderParties
		if parties, err = d.resolver.OrderParties(ctx, ch.EntityID); err == nil {
			s.Order = &parties
		}
	case services.ChannelConversation:
		var parties services.ConversationParties
		if parties, err = d.resolver.ConversationParties(ctx, ch.EntityID); err == nil {
			s.Conversation = &parties
		}
	case services.ChannelTracking:
		var link services.ShipmentLink
		if link, err = d.resolver.ShipmentLink(ctx, ch.EntityID); err == nil {
			s.Shipment = &link
		}
	}
	if errors.Is(err, errs.ErrObjectNotFound) {
		return services.Subject{}, nil
	}
	return s, err
}

// Subscribe authorizes p for the named channel and records the subscription.
func (d *Dispatcher) Subscribe(ctx context.Context, p kernel.Principal, channelName string) (services.Channel, error) {
	if err := p.Validate(); err != nil {
		return services.Channel{}, err
	}
	ch, err := services.ParseChannel(channelName)
	if err != nil {
		return services.Channel{}, err
	}

	subject, err := d.subject(ctx, ch)
	if err != nil {
		return services.Channel{}, err
	}
	if !d.authorizer.CanObserve(p, ch, subject) {
		return services.Channel{}, errs.Unauthorized("user %s may not observe %s", p.UserID(), ch.Name())
	}

	if err = d.directory.Subscribe(ctx, ch.Name(), p); err != nil {
		return services.Channel{}, err
	}
	d.logger.Debug("channel subscribed", zap.String("channel", ch.Name()), zap.String("user_id", p.UserID().String()))
	return ch, nil
}

// Unsubscribe removes p from the named channel. Unknown subscriptions are ignored.
func (d *Dispatcher) Unsubscribe(ctx context.Context, p kernel.Principal, channelName string) error {
	if err := p.Validate(); err != nil {
		return err
	}
	ch, err := services.ParseChannel(channelName)
	if err != nil {
		return err
	}
	return d.directory.Unsubscribe(ctx, ch.Name(), p.UserID())
}
