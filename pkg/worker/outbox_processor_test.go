package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentalcare/booking-api/internal/model"
	"github.com/dentalcare/booking-api/internal/repository/memory"
	"github.com/dentalcare/booking-api/pkg/logger"
	"github.com/dentalcare/booking-api/pkg/messaging"
	"github.com/dentalcare/booking-api/pkg/metrics"
)

type failingBroker struct {
	messaging.Broker
	calls int
}

func (b *failingBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	b.calls++
	return errors.New("redis unavailable")
}

func testConfig() OutboxProcessorConfig {
	return OutboxProcessorConfig{
		Channel:       "appointments",
		BatchSize:     10,
		PollInterval:  time.Second,
		RetryAttempts: 2,
		RetryDelay:    time.Millisecond,
	}
}

func quietLogger() *logger.Logger {
	return logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
}

func seed(t *testing.T, repo *memory.OutboxRepository, eventType string) {
	t.Helper()
	payload, err := json.Marshal(model.AppointmentEvent{AppointmentID: "apt-1"})
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), &model.OutboxEvent{EventType: eventType, Payload: payload}))
}

func TestProcessEventsPublishes(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOutboxRepository()
	broker := messaging.NewInMemoryBroker()
	defer broker.Close()
	m := metrics.NewMetrics("test", prometheus.NewRegistry())

	sub, err := broker.Subscribe(ctx, "appointments")
	require.NoError(t, err)

	seed(t, repo, model.EventAppointmentScheduled)
	p := NewOutboxProcessor(repo, broker, testConfig(), quietLogger(), m)
	require.NoError(t, p.processEvents(ctx))

	select {
	case raw := <-sub:
		var msg messaging.Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, model.EventAppointmentScheduled, msg.Type)
		var evt model.AppointmentEvent
		require.NoError(t, msg.Decode(&evt))
		assert.Equal(t, "apt-1", evt.AppointmentID)
	case <-time.After(time.Second):
		t.Fatal("no message published")
	}

	pending, err := repo.GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
	assert.Equal(t, model.OutboxStatusProcessed, repo.Events()[0].Status)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OutboxEventsProcessed))
}

func TestProcessEventsMarksFailedAfterRetries(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOutboxRepository()
	broker := &failingBroker{}
	m := metrics.NewMetrics("test", prometheus.NewRegistry())

	seed(t, repo, model.EventAppointmentCancelled)
	p := NewOutboxProcessor(repo, broker, testConfig(), quietLogger(), m)

	require.NoError(t, p.processEvents(ctx))
	events := repo.Events()
	require.Len(t, events, 1)
	assert.Equal(t, model.OutboxStatusPending, events[0].Status)
	assert.Equal(t, 1, events[0].RetryCount)
	assert.Equal(t, 2, broker.calls)

	require.NoError(t, p.processEvents(ctx))
	events = repo.Events()
	assert.Equal(t, model.OutboxStatusFailed, events[0].Status)
	require.NotNil(t, events[0].ErrorMessage)
	assert.Equal(t, "redis unavailable", *events[0].ErrorMessage)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.OutboxEventsFailed))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.OutboxRetries.WithLabelValues(model.EventAppointmentCancelled)))
}

func TestNewOutboxProcessorRejectsBadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.BatchSize = 0
	assert.Panics(t, func() {
		NewOutboxProcessor(memory.NewOutboxRepository(), messaging.NewInMemoryBroker(), cfg, quietLogger(), nil)
	})
}
