package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func withStatus(statuses ...AppointmentStatus) []*Appointment {
	out := make([]*Appointment, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, &Appointment{Status: s})
	}
	return out
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name string
		in   []*Appointment
		want AppointmentSummary
	}{
		{
			name: "empty",
			in:   nil,
			want: AppointmentSummary{},
		},
		{
			name: "mixed",
			in: withStatus(
				AppointmentStatusPending,
				AppointmentStatusScheduled,
				AppointmentStatusScheduled,
				AppointmentStatusCancelled,
			),
			want: AppointmentSummary{TotalCount: 4, ScheduleCount: 2, PendingCount: 1, CancelledCount: 1},
		},
		{
			name: "unknown status counts toward total only",
			in:   withStatus(AppointmentStatusPending, "confirmed", ""),
			want: AppointmentSummary{TotalCount: 3, PendingCount: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summarize(tt.in))
		})
	}
}

func TestSummarizeIsPureAndOrderIndependent(t *testing.T) {
	in := withStatus(
		AppointmentStatusCancelled,
		AppointmentStatusPending,
		AppointmentStatusScheduled,
		AppointmentStatusPending,
	)
	first := Summarize(in)
	second := Summarize(in)
	assert.Equal(t, first, second)

	reversed := make([]*Appointment, len(in))
	for i, a := range in {
		reversed[len(in)-1-i] = a
	}
	assert.Equal(t, first, Summarize(reversed))
}

func TestSummaryUnbucketed(t *testing.T) {
	s := Summarize(withStatus(AppointmentStatusScheduled, "archived"))
	assert.Equal(t, 1, s.Unbucketed())
	assert.Equal(t, 0, Summarize(nil).Unbucketed())
}

func TestSummarizeSkipsNilEntries(t *testing.T) {
	in := []*Appointment{nil, {Status: AppointmentStatusPending}}
	assert.Equal(t, AppointmentSummary{TotalCount: 1, PendingCount: 1}, Summarize(in))
}

func TestAppointmentStatusIsValid(t *testing.T) {
	assert.True(t, AppointmentStatusPending.IsValid())
	assert.True(t, AppointmentStatusScheduled.IsValid())
	assert.True(t, AppointmentStatusCancelled.IsValid())
	assert.False(t, AppointmentStatus("completed").IsValid())
}
