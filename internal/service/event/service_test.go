package event

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentalcare/booking-api/internal/model"
	"github.com/dentalcare/booking-api/internal/repository/memory"
	"github.com/dentalcare/booking-api/pkg/messaging"
)

func TestOutboxEmitter(t *testing.T) {
	repo := memory.NewOutboxRepository()
	e := NewOutboxEmitter(repo)

	require.NoError(t, e.Emit(context.Background(), model.EventAppointmentScheduled, map[string]string{"appointmentId": "a1"}))

	events := repo.Events()
	require.Len(t, events, 1)
	assert.Equal(t, model.EventAppointmentScheduled, events[0].EventType)
	assert.Equal(t, model.OutboxStatusPending, events[0].Status)
	assert.JSONEq(t, `{"appointmentId":"a1"}`, string(events[0].Payload))

	assert.Error(t, e.Emit(context.Background(), "x", make(chan int)))
}

func TestBrokerEmitter(t *testing.T) {
	broker := messaging.NewInMemoryBroker()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub, err := broker.Subscribe(ctx, "appointments")
	require.NoError(t, err)

	e := NewBrokerEmitter(broker, "appointments")
	require.NoError(t, e.Emit(ctx, model.EventAppointmentCancelled, map[string]string{"appointmentId": "a2"}))

	select {
	case raw := <-sub:
		var msg messaging.Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, model.EventAppointmentCancelled, msg.Type)
		assert.JSONEq(t, `{"appointmentId":"a2"}`, string(msg.Payload))
	case <-time.After(time.Second):
		t.Fatal("no message published")
	}
}
