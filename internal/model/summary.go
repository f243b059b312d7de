package model

// AppointmentSummary is derived from a full appointment collection and never stored.
//
// Appointments whose status is not one of the three known values count toward
// TotalCount only, so the buckets may sum to less than the total.
type AppointmentSummary struct {
	TotalCount     int `json:"totalCount"`
	ScheduleCount  int `json:"scheduleCount"`
	PendingCount   int `json:"pendingCount"`
	CancelledCount int `json:"cancelledCount"`
}

// Summarize counts appointments per status in a single pass.
func Summarize(appointments []*Appointment) AppointmentSummary {
	var s AppointmentSummary
	for _, a := range appointments {
		if a == nil {
			continue
		}
		s.TotalCount++
		switch a.Status {
		case AppointmentStatusScheduled:
			s.ScheduleCount++
		case AppointmentStatusPending:
			s.PendingCount++
		case AppointmentStatusCancelled:
			s.CancelledCount++
		}
	}
	return s
}

// Unbucketed is the number of appointments not counted in any status bucket.
func (s AppointmentSummary) Unbucketed() int {
	return s.TotalCount - s.ScheduleCount - s.PendingCount - s.CancelledCount
}
