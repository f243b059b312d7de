package event

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dentalcare/booking-api/internal/model"
	"github.com/dentalcare/booking-api/internal/repository"
	"github.com/dentalcare/booking-api/pkg/messaging"
)

// Emitter records a domain event for later delivery.
type Emitter interface {
	Emit(ctx context.Context, eventType string, payload interface{}) error
}

// OutboxEmitter writes events to the outbox table. The worker publishes them.
type OutboxEmitter struct {
	outboxRepo repository.OutboxRepository
}

func NewOutboxEmitter(outboxRepo repository.OutboxRepository) *OutboxEmitter {
	return &OutboxEmitter{outboxRepo: outboxRepo}
}

func (e *OutboxEmitter) Emit(ctx context.Context, eventType string, payload interface{}) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	evt := &model.OutboxEvent{
		EventType: eventType,
		Payload:   payloadJSON,
	}
	if err := e.outboxRepo.Create(ctx, evt); err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}
	return nil
}

// BrokerEmitter publishes straight to a broker. Used with the memory store,
// which has no outbox table.
type BrokerEmitter struct {
	broker  messaging.Broker
	channel string
}

func NewBrokerEmitter(broker messaging.Broker, channel string) *BrokerEmitter {
	return &BrokerEmitter{broker: broker, channel: channel}
}

func (e *BrokerEmitter) Emit(ctx context.Context, eventType string, payload interface{}) error {
	msg, err := messaging.NewMessage(eventType, payload)
	if err != nil {
		return err
	}
	if err := e.broker.Publish(ctx, e.channel, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", eventType, err)
	}
	return nil
}

// Recorded is one call captured by Recorder.
type Recorded struct {
	Type    string
	Payload interface{}
}

// Recorder keeps emitted events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Recorded
	Err    error
}

func (r *Recorder) Emit(ctx context.Context, eventType string, payload interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, Recorded{Type: eventType, Payload: payload})
	return nil
}

func (r *Recorder) Events() []Recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Recorded, len(r.events))
	copy(out, r.events)
	return out
}
