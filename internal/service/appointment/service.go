package appointment

import (
	"context"
	"fmt"
	"sync"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/dentalcare/booking-api/internal/model"
	"github.com/dentalcare/booking-api/internal/repository"
	"github.com/dentalcare/booking-api/internal/service/event"
	"github.com/dentalcare/booking-api/internal/validation"
	"github.com/dentalcare/booking-api/pkg/errors"
	"github.com/dentalcare/booking-api/pkg/metrics"
)

const summaryCacheKey = "appointments:recent"

// CreateParams is a booking request from a patient.
type CreateParams struct {
	PatientID string
	// UserID is the requesting user. Defaults to PatientID.
	UserID string
	Form   validation.AppointmentForm
}

type AppointmentService interface {
	Create(ctx context.Context, p CreateParams) (*model.Appointment, error)
	Update(ctx context.Context, id string, mode validation.Mode, form validation.AppointmentForm) (*model.Appointment, error)
	Get(ctx context.Context, id string) (*model.Appointment, error)
	ListRecent(ctx context.Context) (*model.AppointmentList, error)
}

type Service struct {
	store     repository.DocumentStore
	validator *validation.Validator
	events    event.Emitter
	cache     *cache.Cache
	metrics   *metrics.Metrics

	// summaryMu orders cache fills against invalidation. summaryGen counts
	// invalidations; a fill is kept only if none happened during its read.
	summaryMu  sync.Mutex
	summaryGen uint64
}

func NewService(store repository.DocumentStore, validator *validation.Validator, events event.Emitter, c *cache.Cache, m *metrics.Metrics) *Service {
	return &Service{
		store:     store,
		validator: validator,
		events:    events,
		cache:     c,
		metrics:   m,
	}
}

// Create books a new appointment. It is the only path that yields status
// pending.
func (s *Service) Create(ctx context.Context, p CreateParams) (*model.Appointment, error) {
	details, err := s.validator.ValidateAppointment(validation.ModeCreate, p.Form)
	if err != nil {
		return nil, err
	}

	patient, err := s.getPatient(ctx, p.PatientID)
	if err != nil {
		return nil, err
	}

	userID := p.UserID
	if userID == "" {
		userID = patient.ID
	}

	apt := &model.Appointment{
		PatientID:        patient.ID,
		PatientName:      patient.Name,
		UserID:           userID,
		PrimaryPhysician: details.PrimaryPhysician,
		Schedule:         details.Schedule,
		Status:           model.AppointmentStatusPending,
		Reason:           details.Reason,
		Note:             details.Note,
	}

	fields, err := repository.Encode(apt)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	doc, err := s.store.Create(ctx, repository.CollectionAppointments, "", fields)
	if err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	created := &model.Appointment{}
	if err := repository.Decode(doc, created); err != nil {
		return nil, errors.NewInternal(err)
	}

	s.afterWrite(ctx, model.EventAppointmentCreated, created, patient)
	return created, nil
}

// Update applies a staff decision. ModeSchedule confirms the appointment and
// ModeCancel cancels it; any status may be reached from any other.
func (s *Service) Update(ctx context.Context, id string, mode validation.Mode, form validation.AppointmentForm) (*model.Appointment, error) {
	var (
		status    model.AppointmentStatus
		eventType string
	)
	switch mode {
	case validation.ModeSchedule:
		status, eventType = model.AppointmentStatusScheduled, model.EventAppointmentScheduled
	case validation.ModeCancel:
		status, eventType = model.AppointmentStatusCancelled, model.EventAppointmentCancelled
	default:
		return nil, errors.NewBadRequest(fmt.Sprintf("appointments cannot be updated in %s mode", mode), nil)
	}

	details, err := s.validator.ValidateAppointment(mode, form)
	if err != nil {
		return nil, err
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next := *current
	next.PrimaryPhysician = details.PrimaryPhysician
	next.Schedule = details.Schedule
	next.Status = status
	if details.Reason != "" {
		next.Reason = details.Reason
	}
	if details.Note != "" {
		next.Note = details.Note
	}
	if status == model.AppointmentStatusCancelled {
		next.CancellationReason = details.CancellationReason
	} else {
		next.CancellationReason = ""
	}

	fields := repository.Fields{
		"primaryPhysician":   next.PrimaryPhysician,
		"schedule":           next.Schedule,
		"status":             next.Status,
		"reason":             next.Reason,
		"note":               next.Note,
		"cancellationReason": next.CancellationReason,
	}
	doc, err := s.store.Update(ctx, repository.CollectionAppointments, id, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}

	updated := &model.Appointment{}
	if err := repository.Decode(doc, updated); err != nil {
		return nil, errors.NewInternal(err)
	}

	// The patient is only needed for the notification payload.
	patient, _ := s.getPatient(ctx, updated.PatientID)
	s.afterWrite(ctx, eventType, updated, patient)
	return updated, nil
}

func (s *Service) Get(ctx context.Context, id string) (*model.Appointment, error) {
	doc, err := s.store.Get(ctx, repository.CollectionAppointments, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	apt := &model.Appointment{}
	if err := repository.Decode(doc, apt); err != nil {
		return nil, errors.NewInternal(err)
	}
	return apt, nil
}

// ListRecent returns every appointment, newest first, with the status summary
// shown on the admin dashboard. The result is cached until the next write or
// until the cache TTL passes.
func (s *Service) ListRecent(ctx context.Context) (*model.AppointmentList, error) {
	if cached, ok := s.cache.Get(summaryCacheKey); ok {
		s.metrics.SummaryCache.WithLabelValues("hit").Inc()
		return cached.(*model.AppointmentList), nil
	}
	s.metrics.SummaryCache.WithLabelValues("miss").Inc()

	s.summaryMu.Lock()
	gen := s.summaryGen
	s.summaryMu.Unlock()

	res, err := s.store.List(ctx, repository.CollectionAppointments, repository.ListQuery{})
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	appointments := make([]*model.Appointment, 0, len(res.Documents))
	for _, doc := range res.Documents {
		apt := &model.Appointment{}
		if err := repository.Decode(doc, apt); err != nil {
			return nil, errors.NewInternal(err)
		}
		appointments = append(appointments, apt)
	}

	list := &model.AppointmentList{
		AppointmentSummary: model.Summarize(appointments),
		Documents:          appointments,
	}
	list.TotalCount = res.Total

	s.summaryMu.Lock()
	if s.summaryGen == gen {
		s.cache.Set(summaryCacheKey, list, cache.DefaultExpiration)
	}
	s.summaryMu.Unlock()
	return list, nil
}

// InvalidateSummary drops the cached dashboard so the next read recomputes it.
func (s *Service) InvalidateSummary() {
	s.summaryMu.Lock()
	defer s.summaryMu.Unlock()
	s.summaryGen++
	s.cache.Delete(summaryCacheKey)
}

func (s *Service) afterWrite(ctx context.Context, eventType string, apt *model.Appointment, patient *model.Patient) {
	s.InvalidateSummary()
	s.metrics.AppointmentTransitions.WithLabelValues(string(apt.Status)).Inc()
	// Emit failures are only logged; the write has already happened.
	if err := s.events.Emit(ctx, eventType, model.NewAppointmentEvent(apt, patient)); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).
			Str("event_type", eventType).
			Str("appointment_id", apt.ID).
			Msg("failed to emit appointment event")
	}
}

func (s *Service) getPatient(ctx context.Context, id string) (*model.Patient, error) {
	if id == "" {
		return nil, errors.NewNotFound("patient", nil)
	}
	doc, err := s.store.Get(ctx, repository.CollectionPatients, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	patient := &model.Patient{}
	if err := repository.Decode(doc, patient); err != nil {
		return nil, errors.NewInternal(err)
	}
	return patient, nil
}
