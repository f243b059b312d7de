package model

import (
	"time"
)

// AppointmentStatus has no enforced transitions: any status can be set from
// any other by an explicit update.
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

func (s AppointmentStatus) IsValid() bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusScheduled, AppointmentStatusCancelled:
		return true
	}
	return false
}

type Appointment struct {
	Base
	PatientID          string            `json:"patientId"`
	PatientName        string            `json:"patientName,omitempty"`
	UserID             string            `json:"userId"`
	PrimaryPhysician   string            `json:"primaryPhysician"`
	Schedule           time.Time         `json:"schedule"`
	Status             AppointmentStatus `json:"status"`
	Reason             string            `json:"reason,omitempty"`
	Note               string            `json:"note,omitempty"`
	CancellationReason string            `json:"cancellationReason,omitempty"`
}

// AppointmentDetails is the validated appointment form for any mode.
type AppointmentDetails struct {
	PrimaryPhysician   string    `json:"primaryPhysician"`
	Schedule           time.Time `json:"schedule"`
	Reason             string    `json:"reason,omitempty"`
	Note               string    `json:"note,omitempty"`
	CancellationReason string    `json:"cancellationReason,omitempty"`
}

// AppointmentList is the admin dashboard payload.
type AppointmentList struct {
	AppointmentSummary
	Documents []*Appointment `json:"documents"`
}
