package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/dentalcare/booking-api/internal/model"
	"github.com/dentalcare/booking-api/pkg/messaging"
	"github.com/dentalcare/booking-api/pkg/metrics"
)

const scheduleLayout = "Mon, Jan 2 2006 at 3:04 PM MST"

// Notifier turns appointment events into patient emails.
type Notifier struct {
	broker  messaging.Broker
	channel string
	sender  Sender
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func NewNotifier(broker messaging.Broker, channel string, sender Sender, m *metrics.Metrics, logger zerolog.Logger) *Notifier {
	return &Notifier{
		broker:  broker,
		channel: channel,
		sender:  sender,
		metrics: m,
		logger:  logger.With().Str("component", "notifier").Logger(),
	}
}

// Run consumes the event channel until ctx is done.
func (n *Notifier) Run(ctx context.Context) error {
	n.logger.Info().Str("channel", n.channel).Msg("notifier started")
	return messaging.Consume(ctx, n.broker, n.channel, n.Handle, func(err error) {
		n.logger.Error().Err(err).Msg("notification failed")
	})
}

// Handle emails the patient when an appointment is scheduled or cancelled.
// Other events are ignored.
func (n *Notifier) Handle(ctx context.Context, msg *messaging.Message) error {
	if msg.Type != model.EventAppointmentScheduled && msg.Type != model.EventAppointmentCancelled {
		return nil
	}

	var evt model.AppointmentEvent
	if err := msg.Decode(&evt); err != nil {
		n.metrics.Notifications.WithLabelValues(msg.Type, "invalid").Inc()
		return err
	}
	if evt.PatientEmail == "" {
		n.metrics.Notifications.WithLabelValues(msg.Type, "skipped").Inc()
		n.logger.Warn().Str("appointment_id", evt.AppointmentID).Msg("no patient email, notification skipped")
		return nil
	}

	subject, body := compose(msg.Type, evt)
	if err := n.sender.Send(ctx, evt.PatientEmail, subject, body); err != nil {
		n.metrics.Notifications.WithLabelValues(msg.Type, "failed").Inc()
		return fmt.Errorf("failed to notify patient %s: %w", evt.PatientID, err)
	}

	n.metrics.Notifications.WithLabelValues(msg.Type, "sent").Inc()
	n.logger.Info().
		Str("event_type", msg.Type).
		Str("appointment_id", evt.AppointmentID).
		Msg("patient notified")
	return nil
}

func compose(eventType string, evt model.AppointmentEvent) (string, string) {
	when := evt.Schedule.In(time.UTC).Format(scheduleLayout)
	greeting := "Hello"
	if evt.PatientName != "" {
		greeting = "Hello " + evt.PatientName
	}

	if eventType == model.EventAppointmentCancelled {
		body := fmt.Sprintf("%s,\n\nWe regret to inform you that your appointment for %s has been cancelled.", greeting, when)
		if evt.CancellationReason != "" {
			body += "\nReason: " + evt.CancellationReason
		}
		return "Your appointment has been cancelled", body
	}

	return "Your appointment is confirmed", fmt.Sprintf(
		"%s,\n\nYour appointment is confirmed for %s with Dr. %s.",
		greeting, when, evt.PrimaryPhysician,
	)
}
