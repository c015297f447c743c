package delivery

import (
	"context"
	"time"

	"kisan-advisory-be/pkg/errorsx"
	"kisan-advisory-be/pkg/events"
)

// EventPublisher is satisfied by the NATS publisher.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// NatsDeliverer hands replies to the WhatsApp gateway over the bus.
type NatsDeliverer struct {
	publisher EventPublisher
	now       func() time.Time
}

func NewNatsDeliverer(publisher EventPublisher) *NatsDeliverer {
	return &NatsDeliverer{publisher: publisher, now: time.Now}
}

func (d *NatsDeliverer) Deliver(ctx context.Context, r Reply) error {
	if r.SentAt.IsZero() {
		r.SentAt = d.now()
	}
	ev, err := events.New(events.TypeOutboundReply, r, r.SentAt)
	if err != nil {
		return errorsx.Wrap(err, errorsx.ReasonDeliverySend)
	}
	return errorsx.Wrap(d.publisher.Publish(ctx, ev), errorsx.ReasonDeliverySend)
}
