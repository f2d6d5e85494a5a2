package pubsub

import "context"

// NopPubSub drops published events and never delivers any.
type NopPubSub struct{}

func (NopPubSub) Publish(context.Context, string, *Event) error { return nil }

func (NopPubSub) Subscribe(ctx context.Context, _ string) (<-chan *Event, error) {
	ch := make(chan *Event)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

func (NopPubSub) Close() error { return nil }
