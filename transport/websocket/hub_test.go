package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/warpgame/game/engine"
	"github.com/wricardo/warpgame/game/events"
)

func newTestHub() *Hub {
	return NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testClient(hub *Hub, sessionID string, buffer int) *Client {
	return &Client{id: sessionID + "-client", hub: hub, sessionID: sessionID, send: make(chan []byte, buffer)}
}

func testState(t *testing.T) *engine.State {
	t.Helper()
	g, err := engine.NewGame(nil)
	require.NoError(t, err)
	ok, err := g.Deploy(engine.Knight, engine.White, 2, 0, false)
	require.NoError(t, err)
	require.True(t, ok)
	return g.Snapshot()
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := newTestHub()
	c1 := testClient(hub, "s1", 1)
	c2 := testClient(hub, "s1", 1)

	hub.registerClient(c1)
	hub.registerClient(c2)
	assert.Len(t, hub.sessions["s1"], 2)

	hub.unregisterClient(c1)
	assert.Len(t, hub.sessions["s1"], 1)
	assert.True(t, hub.sessions["s1"][c2])
	_, open := <-c1.send
	assert.False(t, open, "send channel is closed on unregister")

	// second unregister is a no-op
	hub.unregisterClient(c1)

	hub.unregisterClient(c2)
	_, exists := hub.sessions["s1"]
	assert.False(t, exists, "empty sessions are cleaned up")
}

func TestHubBroadcastMessage(t *testing.T) {
	hub := newTestHub()
	watcher := testClient(hub, "s1", 4)
	other := testClient(hub, "s2", 4)
	hub.registerClient(watcher)
	hub.registerClient(other)

	state := testState(t)
	hub.broadcastMessage(&Message{SessionID: "s1", Event: EventStateUpdate, Action: "deploy", GameState: state})

	require.Len(t, watcher.send, 1)
	assert.Empty(t, other.send)

	var msg Message
	require.NoError(t, json.Unmarshal(<-watcher.send, &msg))
	assert.Equal(t, "s1", msg.SessionID)
	assert.Equal(t, EventStateUpdate, msg.Event)
	assert.Equal(t, "deploy", msg.Action)
	require.NotNil(t, msg.GameState)
	require.Len(t, msg.GameState.Units, 1)
	assert.Equal(t, engine.Knight, msg.GameState.Units[0].Type)
}

func TestHubDropsSlowClients(t *testing.T) {
	hub := newTestHub()
	slow := testClient(hub, "s1", 1)
	hub.registerClient(slow)

	hub.broadcastMessage(&Message{SessionID: "s1", Event: "a"})
	hub.broadcastMessage(&Message{SessionID: "s1", Event: "b"})

	_, exists := hub.sessions["s1"]
	assert.False(t, exists)
}

func TestHubRunStopsOnCancel(t *testing.T) {
	hub := newTestHub()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	assert.Zero(t, hub.ClientCount("s1"))
	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}

	// calls after shutdown do not block
	hub.BroadcastEvent("s1", "late", nil)
	assert.Zero(t, hub.ClientCount("s1"))
}

func dial(t *testing.T, srv *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?session=" + sessionID
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestHubServeWS(t *testing.T) {
	hub := newTestHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	initial := testState(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("session"), initial)
	}))
	defer srv.Close()

	conn := dial(t, srv, "ab12")

	msg := readMessage(t, conn)
	assert.Equal(t, EventSnapshot, msg.Event)
	assert.Equal(t, initial.Version, msg.GameState.Version)

	require.Eventually(t, func() bool { return hub.ClientCount("ab12") == 1 }, time.Second, 10*time.Millisecond)

	// updates arrive through the event bus, one message per frame
	bus := events.NewBus(slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer bus.Close()
	require.NoError(t, bus.SubscribeState(ctx, hub.HandleStateEvent))

	next := testState(t)
	next.Turn = 7
	require.NoError(t, bus.PublishState(ctx, events.StateEvent{SessionID: "ab12", Action: "move", State: next}))
	require.NoError(t, bus.PublishState(ctx, events.StateEvent{SessionID: "other", Action: "move", State: next}))
	require.NoError(t, bus.PublishState(ctx, events.StateEvent{SessionID: "ab12", Action: "next_turn", State: next}))

	msg = readMessage(t, conn)
	assert.Equal(t, EventStateUpdate, msg.Event)
	assert.Equal(t, "move", msg.Action)
	assert.Equal(t, 7, msg.GameState.Turn)

	msg = readMessage(t, conn)
	assert.Equal(t, "next_turn", msg.Action)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.ClientCount("ab12") == 0 }, 2*time.Second, 10*time.Millisecond)
}
