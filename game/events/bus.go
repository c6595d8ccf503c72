package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/wricardo/warpgame/game/engine"
)

// TopicState carries a snapshot after every successful game action.
const TopicState = "game.state"

const (
	metaSessionID = "session_id"
	metaAction    = "action"
)

// StateEvent announces a session's new state.
type StateEvent struct {
	SessionID string        `json:"session_id"`
	Action    string        `json:"action"`
	State     *engine.State `json:"state"`
}

// Handler consumes state events. A failed event is logged and dropped.
type Handler func(ctx context.Context, ev StateEvent) error

// Publisher is the side of the bus the game service uses.
type Publisher interface {
	PublishState(ctx context.Context, ev StateEvent) error
}

// Bus is an in-process pub/sub for game events backed by watermill's GoChannel.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger *slog.Logger
}

var _ Publisher = (*Bus)(nil)

// NewBus creates a bus. Publish returns once every subscriber has handled the
// event, so each subscriber sees events in publish order.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	pubsub := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer:            engine.WebSocketBufferSize,
			BlockPublishUntilSubscriberAck: true,
		},
		NewSlogAdapter(logger),
	)
	return &Bus{pubsub: pubsub, logger: logger}
}

// PublishState encodes ev and publishes it on TopicState.
func (b *Bus) PublishState(ctx context.Context, ev StateEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode state event: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(metaSessionID, ev.SessionID)
	msg.Metadata.Set(metaAction, ev.Action)
	msg.SetContext(ctx)
	return b.pubsub.Publish(TopicState, msg)
}

// SubscribeState runs handler for every state event until ctx is cancelled or
// the bus is closed. It returns as soon as the subscription is active.
func (b *Bus) SubscribeState(ctx context.Context, handler Handler) error {
	messages, err := b.pubsub.Subscribe(ctx, TopicState)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", TopicState, err)
	}

	go func() {
		for msg := range messages {
			var ev StateEvent
			if err := json.Unmarshal(msg.Payload, &ev); err != nil {
				b.logger.Error("dropping malformed state event", "msg_id", msg.UUID, "error", err)
				msg.Ack()
				continue
			}
			if err := handler(ctx, ev); err != nil {
				b.logger.Error("state event handler failed",
					"session", msg.Metadata.Get(metaSessionID),
					"action", msg.Metadata.Get(metaAction),
					"error", err)
			}
			msg.Ack()
		}
		b.logger.Debug("state subscription ended")
	}()

	return nil
}

// Close shuts the bus down and ends every subscription.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}
