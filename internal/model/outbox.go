package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusProcessed OutboxStatus = "processed"
	OutboxStatusFailed    OutboxStatus = "failed"
)

// Event types written to the outbox.
const (
	EventAppointmentCreated   = "appointment.created"
	EventAppointmentScheduled = "appointment.scheduled"
	EventAppointmentCancelled = "appointment.cancelled"
	EventPatientRegistered    = "patient.registered"
)

type OutboxEvent struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	EventType    string          `db:"event_type" json:"event_type"`
	Payload      json.RawMessage `db:"payload" json:"payload"`
	Status       OutboxStatus    `db:"status" json:"status"`
	ErrorMessage *string         `db:"error_message" json:"error_message,omitempty"`
	RetryCount   int             `db:"retry_count" json:"retry_count"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	ProcessedAt  *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// AppointmentEvent is the payload published for appointment changes.
type AppointmentEvent struct {
	AppointmentID      string            `json:"appointmentId"`
	PatientID          string            `json:"patientId"`
	PatientName        string            `json:"patientName,omitempty"`
	PatientEmail       string            `json:"patientEmail,omitempty"`
	PrimaryPhysician   string            `json:"primaryPhysician"`
	Schedule           time.Time         `json:"schedule"`
	Status             AppointmentStatus `json:"status"`
	CancellationReason string            `json:"cancellationReason,omitempty"`
}

// NewAppointmentEvent builds the payload for a; patient may be nil when the
// patient record could not be loaded.
func NewAppointmentEvent(a *Appointment, patient *Patient) AppointmentEvent {
	evt := AppointmentEvent{
		AppointmentID:      a.ID,
		PatientID:          a.PatientID,
		PatientName:        a.PatientName,
		PrimaryPhysician:   a.PrimaryPhysician,
		Schedule:           a.Schedule,
		Status:             a.Status,
		CancellationReason: a.CancellationReason,
	}
	if patient != nil {
		evt.PatientName = patient.Name
		evt.PatientEmail = patient.Email
	}
	return evt
}

// PatientRegisteredEvent is the payload published when registration completes.
type PatientRegisteredEvent struct {
	PatientID        string `json:"patientId"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	PrimaryPhysician string `json:"primaryPhysician"`
}
