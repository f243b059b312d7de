package patient

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentalcare/booking-api/internal/model"
	"github.com/dentalcare/booking-api/internal/repository/memory"
	"github.com/dentalcare/booking-api/internal/service/event"
	"github.com/dentalcare/booking-api/internal/service/roster"
	"github.com/dentalcare/booking-api/internal/validation"
	apperrors "github.com/dentalcare/booking-api/pkg/errors"
)

func newService() (*Service, *event.Recorder) {
	rec := &event.Recorder{}
	v := validation.New(validation.WithRoster(roster.New([]string{"Leila Cameron"})))
	return NewService(memory.NewDocumentStore(), v, rec), rec
}

func registrationForm() validation.PatientForm {
	return validation.PatientForm{
		Name:                   "Jane Doe",
		Email:                  "jane@example.com",
		Phone:                  "+14155550100",
		BirthDate:              "1990-04-12",
		Gender:                 "female",
		Address:                "12 Harbour Street",
		Occupation:             "Engineer",
		EmergencyContactName:   "John Doe",
		EmergencyContactNumber: "+14155550199",
		PrimaryPhysician:       "Leila Cameron",
		InsuranceProvider:      "Acme Health",
		InsurancePolicyNumber:  "AH-1",
		TreatmentConsent:       true,
		DisclosureConsent:      true,
		PrivacyConsent:         true,
	}
}

func TestCreateUserAndGet(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	p, err := svc.CreateUser(ctx, validation.UserForm{Name: "Jane Doe", Email: "jane@example.com", Phone: "+14155550100"})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.False(t, p.Registered)

	got, err := svc.GetPatient(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, "jane@example.com", got.Email)

	_, err = svc.GetPatient(ctx, "missing")
	assert.True(t, apperrors.IsNotFound(err))

	_, err = svc.CreateUser(ctx, validation.UserForm{Name: "J"})
	_, ok := apperrors.AsValidation(err)
	assert.True(t, ok)
}

func TestRegister(t *testing.T) {
	svc, rec := newService()
	ctx := context.Background()

	p, err := svc.CreateUser(ctx, validation.UserForm{Name: "Jane", Email: "jane@example.com", Phone: "+14155550100"})
	require.NoError(t, err)

	registered, err := svc.Register(ctx, p.ID, registrationForm())
	require.NoError(t, err)
	assert.True(t, registered.Registered)
	assert.Equal(t, "Jane Doe", registered.Name)
	assert.Equal(t, model.GenderFemale, registered.Gender)
	assert.Equal(t, "Acme Health", registered.InsuranceProvider)
	require.NotNil(t, registered.BirthDate)
	assert.True(t, time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC).Equal(*registered.BirthDate))
	assert.True(t, p.CreatedAt.Equal(registered.CreatedAt))

	events := rec.Events()
	require.Len(t, events, 1)
	assert.Equal(t, model.EventPatientRegistered, events[0].Type)

	_, err = svc.Register(ctx, p.ID, registrationForm())
	assert.True(t, apperrors.IsCode(err, apperrors.ErrConflict))
}

func TestRegisterRejections(t *testing.T) {
	svc, rec := newService()
	ctx := context.Background()

	p, err := svc.CreateUser(ctx, validation.UserForm{Name: "Jane", Email: "jane@example.com", Phone: "+14155550100"})
	require.NoError(t, err)

	form := registrationForm()
	form.EmergencyContactNumber = form.Phone
	_, err = svc.Register(ctx, p.ID, form)
	vErr, ok := apperrors.AsValidation(err)
	require.True(t, ok)
	assert.True(t, vErr.Has("emergencyContactNumber"))

	form = registrationForm()
	form.PrimaryPhysician = "D"
	_, err = svc.Register(ctx, p.ID, form)
	vErr, ok = apperrors.AsValidation(err)
	require.True(t, ok)
	assert.True(t, vErr.Has("primaryPhysician"))

	_, err = svc.Register(ctx, "missing", registrationForm())
	assert.True(t, apperrors.IsNotFound(err))

	got, err := svc.GetPatient(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, got.Registered)
	assert.Empty(t, rec.Events())
}
