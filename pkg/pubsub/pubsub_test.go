package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelToTopic(t *testing.T) {
	assert.Equal(t, "yatube-events", channelToTopic(ChannelEvents))
}

func TestNewPubSubDrivers(t *testing.T) {
	ps, err := NewPubSub(Config{Driver: "none"})
	require.NoError(t, err)
	assert.IsType(t, NopPubSub{}, ps)

	_, err = NewPubSub(Config{Driver: "carrier-pigeon"})
	assert.Error(t, err)
}

func TestNopPubSubClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ch, err := NopPubSub{}.Subscribe(ctx, ChannelEvents)
	require.NoError(t, err)
	require.NoError(t, NopPubSub{}.Publish(ctx, ChannelEvents, &Event{}))

	cancel()
	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscription not closed")
	}
}

func TestRedisPubSubRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	ps := NewRedisPubSubFromClient(client)
	t.Cleanup(func() { ps.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events, err := ps.Subscribe(ctx, ChannelEvents)
	require.NoError(t, err)

	ev, err := NewEvent(EventFollowCreated, "leo", FollowPayload{User: "pasha", Author: "leo"})
	require.NoError(t, err)
	require.NoError(t, ps.Publish(ctx, ChannelEvents, ev))

	select {
	case got := <-events:
		require.NotNil(t, got)
		assert.Equal(t, EventFollowCreated, got.Type)
		assert.Equal(t, "leo", got.Subject)

		var payload FollowPayload
		require.NoError(t, got.UnmarshalPayload(&payload))
		assert.Equal(t, "pasha", payload.User)
	case <-ctx.Done():
		t.Fatal("event not delivered")
	}
}
