package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/dentalcare/booking-api/pkg/errors"
	"github.com/dentalcare/booking-api/internal/model"
)

const (
	tagIntlPhone      = "intl_phone"
	tagCoerceDate     = "coerce_date"
	tagCoerceDateTime = "coerce_datetime"
	tagConsented      = "consented"
	tagKnownDoctor    = "known_doctor"
	tagDistinctPhone  = "distinct_phone"
)

var intlPhone = regexp.MustCompile(`^\+\d{10,15}$`)

// Roster reports whether a physician name is known.
type Roster interface {
	Contains(name string) bool
}

type Option func(*Validator)

// WithRoster makes primaryPhysician checks also require a roster entry.
func WithRoster(r Roster) Option {
	return func(v *Validator) {
		v.roster = r
	}
}

// Validator turns raw form input into typed values or a complete list of
// field violations. It performs no I/O and is safe for concurrent use.
type Validator struct {
	v      *validator.Validate
	roster Roster
}

func New(opts ...Option) *Validator {
	out := &Validator{v: validator.New()}
	for _, opt := range opts {
		opt(out)
	}

	out.v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	mustRegister(out.v, tagIntlPhone, func(fl validator.FieldLevel) bool {
		return intlPhone.MatchString(fl.Field().String())
	})
	mustRegister(out.v, tagCoerceDate, func(fl validator.FieldLevel) bool {
		_, ok := DateInput(fl.Field().String()).Date()
		return ok
	})
	mustRegister(out.v, tagCoerceDateTime, func(fl validator.FieldLevel) bool {
		_, ok := DateInput(fl.Field().String()).Time()
		return ok
	})
	mustRegister(out.v, tagConsented, func(fl validator.FieldLevel) bool {
		return fl.Field().Kind() == reflect.Bool && fl.Field().Bool()
	})
	mustRegister(out.v, tagKnownDoctor, func(fl validator.FieldLevel) bool {
		if out.roster == nil {
			return true
		}
		return out.roster.Contains(fl.Field().String())
	})

	out.v.RegisterStructValidation(distinctPhones, PatientForm{})
	return out
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

func distinctPhones(sl validator.StructLevel) {
	form := sl.Current().Interface().(PatientForm)
	if form.Phone == form.EmergencyContactNumber {
		sl.ReportError(form.EmergencyContactNumber, "emergencyContactNumber", "EmergencyContactNumber", tagDistinctPhone, "")
	}
}

// ValidateUser checks the minimal identity form.
func (v *Validator) ValidateUser(in UserForm) (*model.UserIdentity, error) {
	if err := v.check(in); err != nil {
		return nil, err
	}
	return &model.UserIdentity{Name: in.Name, Email: in.Email, Phone: in.Phone}, nil
}

// ValidatePatient checks the full registration form.
func (v *Validator) ValidatePatient(in PatientForm) (*model.PatientRegistration, error) {
	if err := v.check(in); err != nil {
		return nil, err
	}

	birthDate, _ := in.BirthDate.Date()
	return &model.PatientRegistration{
		UserIdentity:             model.UserIdentity{Name: in.Name, Email: in.Email, Phone: in.Phone},
		BirthDate:                birthDate,
		Gender:                   model.Gender(in.Gender),
		Address:                  in.Address,
		Occupation:               in.Occupation,
		EmergencyContactName:     in.EmergencyContactName,
		EmergencyContactNumber:   in.EmergencyContactNumber,
		PrimaryPhysician:         in.PrimaryPhysician,
		InsuranceProvider:        in.InsuranceProvider,
		InsurancePolicyNumber:    in.InsurancePolicyNumber,
		Allergies:                in.Allergies,
		CurrentMedication:        in.CurrentMedication,
		FamilyMedicalHistory:     in.FamilyMedicalHistory,
		PastMedicalHistory:       in.PastMedicalHistory,
		IdentificationType:       in.IdentificationType,
		IdentificationNumber:     in.IdentificationNumber,
		IdentificationDocumentID: in.IdentificationDocumentID,
		TreatmentConsent:         in.TreatmentConsent,
		DisclosureConsent:        in.DisclosureConsent,
		PrivacyConsent:           in.PrivacyConsent,
	}, nil
}

// ValidateAppointment checks an appointment form against the rule set of mode.
func (v *Validator) ValidateAppointment(mode Mode, in AppointmentForm) (*model.AppointmentDetails, error) {
	if err := v.check(formFor(mode, in)); err != nil {
		return nil, err
	}

	schedule, _ := in.Schedule.Time()
	return &model.AppointmentDetails{
		PrimaryPhysician:   in.PrimaryPhysician,
		Schedule:           schedule,
		Reason:             in.Reason,
		Note:               in.Note,
		CancellationReason: in.CancellationReason,
	}, nil
}

func (v *Validator) check(form interface{}) error {
	err := v.v.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.NewInternal(err)
	}

	// A cross-field failure replaces every other message on its field.
	fatal := make(map[string]bool)
	for _, fe := range verrs {
		if fe.Tag() == tagDistinctPhone {
			fatal[fe.Field()] = true
		}
	}

	fields := make([]apperrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		if fatal[fe.Field()] && fe.Tag() != tagDistinctPhone {
			continue
		}
		fields = append(fields, apperrors.FieldError{Field: fe.Field(), Message: messageFor(fe.Field(), fe.Tag())})
	}
	return apperrors.NewValidation(fields...)
}
