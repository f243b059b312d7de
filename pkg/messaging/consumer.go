package messaging

import (
	"context"
	"encoding/json"
	"fmt"
)

// Handler processes one decoded message.
type Handler func(ctx context.Context, msg *Message) error

// Consume subscribes to channel and feeds each message to handler until ctx
// is done or the subscription closes. Handler and decode errors go to onError
// and do not stop consumption.
func Consume(ctx context.Context, broker Broker, channel string, handler Handler, onError func(error)) error {
	msgs, err := broker.Subscribe(ctx, channel)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case raw, ok := <-msgs:
			if !ok {
				return ctx.Err()
			}
			var msg Message
			if err := json.Unmarshal(raw, &msg); err != nil {
				onError(fmt.Errorf("failed to decode message: %w", err))
				continue
			}
			if err := handler(ctx, &msg); err != nil {
				onError(fmt.Errorf("failed to handle %s message %s: %w", msg.Type, msg.ID, err))
			}
		}
	}
}
