package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentalcare/booking-api/internal/model"
	"github.com/dentalcare/booking-api/pkg/messaging"
	"github.com/dentalcare/booking-api/pkg/metrics"
)

type sent struct {
	to, subject, body string
}

type fakeSender struct {
	mu   sync.Mutex
	mail []sent
	err  error
}

func (f *fakeSender) Send(ctx context.Context, to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.mail = append(f.mail, sent{to, subject, body})
	return nil
}

func (f *fakeSender) sent() []sent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sent(nil), f.mail...)
}

func appointmentMessage(t *testing.T, eventType, email string) *messaging.Message {
	t.Helper()
	msg, err := messaging.NewMessage(eventType, model.AppointmentEvent{
		AppointmentID:      "apt-1",
		PatientID:          "pat-1",
		PatientName:        "Jane Doe",
		PatientEmail:       email,
		PrimaryPhysician:   "John Green",
		Schedule:           time.Date(2026, 11, 2, 9, 30, 0, 0, time.UTC),
		CancellationReason: "Clinic closed",
	})
	require.NoError(t, err)
	return msg
}

func newNotifier(sender Sender) (*Notifier, *metrics.Metrics) {
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	return NewNotifier(messaging.NewInMemoryBroker(), "appointments", sender, m, zerolog.Nop()), m
}

func TestHandle(t *testing.T) {
	ctx := context.Background()

	t.Run("scheduled", func(t *testing.T) {
		sender := &fakeSender{}
		n, m := newNotifier(sender)
		require.NoError(t, n.Handle(ctx, appointmentMessage(t, model.EventAppointmentScheduled, "jane@example.com")))

		mail := sender.sent()
		require.Len(t, mail, 1)
		assert.Equal(t, "jane@example.com", mail[0].to)
		assert.Equal(t, "Your appointment is confirmed", mail[0].subject)
		assert.Contains(t, mail[0].body, "Dr. John Green")
		assert.Contains(t, mail[0].body, "Nov 2 2026")
		assert.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues(model.EventAppointmentScheduled, "sent")))
	})

	t.Run("cancelled", func(t *testing.T) {
		sender := &fakeSender{}
		n, _ := newNotifier(sender)
		require.NoError(t, n.Handle(ctx, appointmentMessage(t, model.EventAppointmentCancelled, "jane@example.com")))

		mail := sender.sent()
		require.Len(t, mail, 1)
		assert.Contains(t, mail[0].body, "Reason: Clinic closed")
	})

	t.Run("created is ignored", func(t *testing.T) {
		sender := &fakeSender{}
		n, _ := newNotifier(sender)
		require.NoError(t, n.Handle(ctx, appointmentMessage(t, model.EventAppointmentCreated, "jane@example.com")))
		assert.Empty(t, sender.sent())
	})

	t.Run("no email", func(t *testing.T) {
		sender := &fakeSender{}
		n, m := newNotifier(sender)
		require.NoError(t, n.Handle(ctx, appointmentMessage(t, model.EventAppointmentScheduled, "")))
		assert.Empty(t, sender.sent())
		assert.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues(model.EventAppointmentScheduled, "skipped")))
	})

	t.Run("send failure", func(t *testing.T) {
		n, m := newNotifier(&fakeSender{err: errors.New("smtp down")})
		err := n.Handle(ctx, appointmentMessage(t, model.EventAppointmentCancelled, "jane@example.com"))
		require.Error(t, err)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues(model.EventAppointmentCancelled, "failed")))
	})
}

func TestRunConsumesBroker(t *testing.T) {
	broker := messaging.NewInMemoryBroker()
	defer broker.Close()
	sender := &fakeSender{}
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	n := NewNotifier(broker, "appointments", sender, m, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- n.Run(ctx) }()

	msg := appointmentMessage(t, model.EventAppointmentScheduled, "jane@example.com")
	require.Eventually(t, func() bool {
		_ = broker.Publish(context.Background(), "appointments", msg)
		return len(sender.sent()) > 0
	}, time.Second, 10*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
