package pubsub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, *websocket.Conn) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub()
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	return hub, conn
}

func TestHub_Broadcast(t *testing.T) {
	hub, conn := startHub(t)

	assert.True(t, hub.Broadcast([]byte(`{"hello":"world"}`)))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"hello":"world"}`, string(msg))
}

func TestHub_UnregistersClosedClients(t *testing.T) {
	hub, conn := startHub(t)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestFanoutBus(t *testing.T) {
	hub, conn := startHub(t)
	primary := NewMemoryBus()
	bus := NewFanoutBus(primary, hub)

	require.NoError(t, bus.Publish(context.Background(), "inventory.reserved", []byte(`{"event_type":"inventory.reserved"}`)))
	require.Len(t, primary.Topic("inventory.reserved"), 1)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"topic":"inventory.reserved","event":{"event_type":"inventory.reserved"}}`, string(msg))
}
