package websocket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-go/internal/config"
	"social-go/internal/events"
)

func testWSConfig() config.WebSocketConfig {
	return config.WebSocketConfig{
		WriteWaitSeconds:    10,
		PongWaitSeconds:     60,
		PingPeriodSeconds:   54,
		MaxMessageSizeBytes: 4096,
		SendBufferSize:      8,
	}
}

func newTestClient(connID string, hub *Hub, userID uint) *Client {
	client := NewClient(connID, hub, nil, nil, testWSConfig())
	client.UserID = userID
	return client
}

func TestBindResolvesClient(t *testing.T) {
	hub := NewHub()
	client := newTestClient("c1", hub, 1)

	hub.Bind(1, client)

	assert.Same(t, client, hub.Resolve(1))
	assert.True(t, hub.IsOnline(1))
	assert.Nil(t, hub.Resolve(2))
}

func TestBindLastWriterWins(t *testing.T) {
	hub := NewHub()
	first := newTestClient("c1", hub, 1)
	second := newTestClient("c2", hub, 1)

	hub.Bind(1, first)
	hub.Bind(1, second)

	assert.Same(t, second, hub.Resolve(1))
	// The replaced connection's send channel is closed so its write pump ends.
	assert.False(t, first.Enqueue([]byte("late")))
}

func TestUnbindComparesBeforeClearing(t *testing.T) {
	hub := NewHub()
	stale := newTestClient("c1", hub, 1)
	fresh := newTestClient("c2", hub, 1)

	hub.Bind(1, stale)
	hub.Bind(1, fresh)

	// The stale connection disconnects after the user already reconnected;
	// its unbind must not evict the fresh binding.
	userID, cleared := hub.Unbind(stale)
	assert.False(t, cleared)
	assert.Zero(t, userID)
	assert.Same(t, fresh, hub.Resolve(1))

	userID, cleared = hub.Unbind(fresh)
	assert.True(t, cleared)
	assert.Equal(t, uint(1), userID)
	assert.Nil(t, hub.Resolve(1))
}

func TestUnbindBeforeIdentityBound(t *testing.T) {
	hub := NewHub()
	client := NewClient("c1", hub, nil, nil, testWSConfig())

	_, cleared := hub.Unbind(client)

	assert.False(t, cleared)
}

func TestDispatcherDeliversToLiveConnection(t *testing.T) {
	hub := NewHub()
	dispatcher := NewDispatcher(hub)
	client := newTestClient("c1", hub, 1)
	hub.Bind(1, client)

	dispatcher.Deliver(1, events.ServerPresence, events.PresencePayload{UserID: 2, Status: "online"})

	select {
	case raw := <-client.send:
		var env events.Envelope
		require.NoError(t, json.Unmarshal(raw, &env))
		assert.Equal(t, events.ServerPresence, env.Event)
	default:
		t.Fatal("expected a frame on the client's send channel")
	}
}

func TestDispatcherDropsForOfflineUser(t *testing.T) {
	hub := NewHub()
	dispatcher := NewDispatcher(hub)

	// No connection for user 5; the delivery is dropped silently.
	dispatcher.Deliver(5, events.ServerMessage, map[string]string{"content": "hi"})
}

func TestEnqueueDropsWhenBufferFull(t *testing.T) {
	hub := NewHub()
	client := newTestClient("c1", hub, 1)

	for i := 0; i < testWSConfig().SendBufferSize; i++ {
		require.True(t, client.Enqueue([]byte("frame")))
	}
	assert.False(t, client.Enqueue([]byte("overflow")))
}
