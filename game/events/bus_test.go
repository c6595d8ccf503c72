package events

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/warpgame/game/engine"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type collector struct {
	mu     sync.Mutex
	events []StateEvent
}

func (c *collector) handle(_ context.Context, ev StateEvent) error {
	c.mu.Lock()
	c.events = append(c.events, ev)
	c.mu.Unlock()
	return nil
}

func (c *collector) snapshot() []StateEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]StateEvent(nil), c.events...)
}

func testState(t *testing.T) *engine.State {
	t.Helper()
	g, err := engine.NewGame(nil)
	require.NoError(t, err)
	_, err = g.Deploy(engine.Warpling, engine.White, 3, 0, true)
	require.NoError(t, err)
	return g.Snapshot()
}

func TestBus_PublishSubscribe(t *testing.T) {
	bus := NewBus(quietLogger())
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var first, second collector
	require.NoError(t, bus.SubscribeState(ctx, first.handle))
	require.NoError(t, bus.SubscribeState(ctx, second.handle))

	state := testState(t)
	require.NoError(t, bus.PublishState(ctx, StateEvent{SessionID: "ab12", Action: "deploy", State: state}))
	require.NoError(t, bus.PublishState(ctx, StateEvent{SessionID: "cd34", Action: "next_turn", State: state}))

	for _, c := range []*collector{&first, &second} {
		require.Eventually(t, func() bool { return len(c.snapshot()) == 2 }, time.Second, 10*time.Millisecond)
		got := c.snapshot()
		assert.Equal(t, "ab12", got[0].SessionID)
		assert.Equal(t, "deploy", got[0].Action)
		require.NotNil(t, got[0].State)
		assert.Equal(t, state.Version, got[0].State.Version)
		require.Len(t, got[0].State.Units, 1)
		assert.Equal(t, engine.White, got[0].State.Units[0].Color)
		assert.Equal(t, "cd34", got[1].SessionID)
	}
}

func TestBus_PublishWithoutSubscribers(t *testing.T) {
	bus := NewBus(quietLogger())
	defer bus.Close()

	assert.NoError(t, bus.PublishState(context.Background(), StateEvent{SessionID: "none"}))
}

func TestBus_FailingHandlerDoesNotStall(t *testing.T) {
	bus := NewBus(quietLogger())
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	calls := 0
	require.NoError(t, bus.SubscribeState(ctx, func(context.Context, StateEvent) error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		return errors.New("client gone")
	}))

	for i := 0; i < 3; i++ {
		require.NoError(t, bus.PublishState(ctx, StateEvent{SessionID: "s"}))
	}
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls == 3
	}, time.Second, 10*time.Millisecond)
}

func TestBus_CloseEndsSubscriptions(t *testing.T) {
	bus := NewBus(quietLogger())
	require.NoError(t, bus.SubscribeState(context.Background(), func(context.Context, StateEvent) error { return nil }))
	require.NoError(t, bus.Close())

	assert.Error(t, bus.PublishState(context.Background(), StateEvent{SessionID: "late"}))
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	adapter := NewSlogAdapter(logger).With(watermill.LogFields{"topic": TopicState})

	adapter.Info("subscribed", watermill.LogFields{"n": 1})
	adapter.Trace("tick", nil)
	adapter.Error("publish failed", errors.New("boom"), nil)

	out := buf.String()
	assert.Contains(t, out, "msg=subscribed topic=game.state n=1")
	assert.Contains(t, out, "msg=tick")
	assert.Contains(t, out, "error=boom")
}
