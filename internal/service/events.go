package service

import (
	"context"

	"github.com/Gorstka/Yatube/pkg/log"
	"github.com/Gorstka/Yatube/pkg/pubsub"
)

// EventPublisher hands domain events to the event bus. Delivery is best
// effort: failures are logged and never reach the caller.
type EventPublisher struct {
	pub     pubsub.Publisher
	channel string
	observe func(eventType string, err error)
}

// NewEventPublisher wraps pub. observe may be nil.
func NewEventPublisher(pub pubsub.Publisher, observe func(eventType string, err error)) *EventPublisher {
	if pub == nil {
		pub = pubsub.NopPubSub{}
	}
	return &EventPublisher{
		pub:     pub,
		channel: pubsub.ChannelEvents,
		observe: observe,
	}
}

func (e *EventPublisher) publish(ctx context.Context, eventType, subject string, payload interface{}) {
	if e == nil {
		return
	}
	l := log.Ctx(ctx)

	event, err := pubsub.NewEvent(eventType, subject, payload)
	if err == nil {
		err = e.pub.Publish(context.WithoutCancel(ctx), e.channel, event)
	}
	if err != nil {
		l.Warn().Err(err).Str("event", eventType).Str("subject", subject).Msg("failed to publish event")
	}
	if e.observe != nil {
		e.observe(eventType, err)
	}
}
