package patient

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dentalcare/booking-api/internal/model"
	"github.com/dentalcare/booking-api/internal/repository"
	"github.com/dentalcare/booking-api/internal/service/event"
	"github.com/dentalcare/booking-api/internal/validation"
	"github.com/dentalcare/booking-api/pkg/errors"
)

type PatientService interface {
	CreateUser(ctx context.Context, form validation.UserForm) (*model.Patient, error)
	GetPatient(ctx context.Context, id string) (*model.Patient, error)
	Register(ctx context.Context, id string, form validation.PatientForm) (*model.Patient, error)
}

type Service struct {
	store     repository.DocumentStore
	validator *validation.Validator
	events    event.Emitter
}

func NewService(store repository.DocumentStore, validator *validation.Validator, events event.Emitter) *Service {
	return &Service{
		store:     store,
		validator: validator,
		events:    events,
	}
}

// CreateUser starts registration from the minimal identity form.
func (s *Service) CreateUser(ctx context.Context, form validation.UserForm) (*model.Patient, error) {
	identity, err := s.validator.ValidateUser(form)
	if err != nil {
		return nil, err
	}

	fields, err := repository.Encode(&model.Patient{
		Name:  identity.Name,
		Email: identity.Email,
		Phone: identity.Phone,
	})
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	doc, err := s.store.Create(ctx, repository.CollectionPatients, "", fields)
	if err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}
	return decode(doc)
}

func (s *Service) GetPatient(ctx context.Context, id string) (*model.Patient, error) {
	doc, err := s.store.Get(ctx, repository.CollectionPatients, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return decode(doc)
}

// Register enriches a patient with the full registration form. It succeeds
// once per patient.
func (s *Service) Register(ctx context.Context, id string, form validation.PatientForm) (*model.Patient, error) {
	reg, err := s.validator.ValidatePatient(form)
	if err != nil {
		return nil, err
	}

	patient, err := s.GetPatient(ctx, id)
	if err != nil {
		return nil, err
	}
	if patient.Registered {
		return nil, errors.NewConflict("patient is already registered")
	}

	patient.Apply(reg)
	fields, err := repository.Encode(patient)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	doc, err := s.store.Update(ctx, repository.CollectionPatients, id, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to register patient: %w", err)
	}
	registered, err := decode(doc)
	if err != nil {
		return nil, err
	}

	payload := model.PatientRegisteredEvent{
		PatientID:        registered.ID,
		Name:             registered.Name,
		Email:            registered.Email,
		PrimaryPhysician: registered.PrimaryPhysician,
	}
	if err := s.events.Emit(ctx, model.EventPatientRegistered, payload); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("patient_id", id).Msg("failed to emit registration event")
	}
	return registered, nil
}

func decode(doc *repository.Document) (*model.Patient, error) {
	p := &model.Patient{}
	if err := repository.Decode(doc, p); err != nil {
		return nil, errors.NewInternal(err)
	}
	return p, nil
}
