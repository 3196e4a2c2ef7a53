package notify

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisRelay(t *testing.T) {
	server := miniredis.RunT(t)
	client := NewRedisClient(server.Addr())
	defer client.Close()

	hub := NewHub()
	sub, err := hub.Subscribe("room")
	require.NoError(t, err)
	defer sub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ready := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- NewRelay(client, "", hub).Run(ctx, ready) }()

	select {
	case <-ready:
	case <-time.After(2 * time.Second):
		t.Fatal("relay never subscribed")
	}

	event := NewEvent("room", KindActivityCreated)
	event.ActivityID = "activity-1"
	require.NoError(t, NewRedisPublisher(client, "").Publish(ctx, event))

	assert.Equal(t, event, receive(t, sub))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not stop")
	}
}

func TestRedisRelaySkipsMalformedPayloads(t *testing.T) {
	server := miniredis.RunT(t)
	client := NewRedisClient(server.Addr())
	defer client.Close()

	hub := NewHub()
	sub, err := hub.Subscribe("room")
	require.NoError(t, err)
	defer sub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ready := make(chan struct{})
	go NewRelay(client, "custom", hub).Run(ctx, ready)
	<-ready

	require.NoError(t, client.Publish(ctx, "custom", "not json").Err())
	event := NewEvent("room", KindPaidChanged)
	require.NoError(t, NewRedisPublisher(client, "custom").Publish(ctx, event))

	assert.Equal(t, event.ID, receive(t, sub).ID)
}
