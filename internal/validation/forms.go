package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// DateInput holds a date as submitted. JSON strings are kept as text until
// validated; JSON numbers are unix milliseconds and are stored as RFC3339.
type DateInput string

func (d *DateInput) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*d = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*d = DateInput(s)
		return nil
	}
	ms, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("date must be a string or unix milliseconds: %w", err)
	}
	*d = DateInput(time.UnixMilli(ms).UTC().Format(time.RFC3339Nano))
	return nil
}

// Layouts accepted when coercing a DateInput, most specific first.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006-01",
	"2006",
}

// Time coerces the input into a time value.
func (d DateInput) Time() (time.Time, bool) {
	s := string(d)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Date coerces the input and truncates it to a calendar date.
func (d DateInput) Date() (time.Time, bool) {
	t, ok := d.Time()
	if !ok {
		return time.Time{}, false
	}
	y, m, day := t.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC), true
}

// UserForm is the minimal identity captured when a patient starts registering.
type UserForm struct {
	Name  string `json:"name" validate:"min=2"`
	Email string `json:"email" validate:"email"`
	Phone string `json:"phone" validate:"intl_phone"`
}

// PatientForm is the full registration form.
type PatientForm struct {
	Name                   string    `json:"name" validate:"min=2"`
	Email                  string    `json:"email" validate:"email"`
	Phone                  string    `json:"phone" validate:"intl_phone"`
	BirthDate              DateInput `json:"birthDate" validate:"coerce_date"`
	Gender                 string    `json:"gender" validate:"oneof=male female other"`
	Address                string    `json:"address" validate:"min=5,max=500"`
	Occupation             string    `json:"occupation" validate:"min=2,max=500"`
	EmergencyContactName   string    `json:"emergencyContactName" validate:"min=2"`
	EmergencyContactNumber string    `json:"emergencyContactNumber" validate:"intl_phone"`
	PrimaryPhysician       string    `json:"primaryPhysician" validate:"min=2"`

	InsuranceProvider     string `json:"insuranceProvider"`
	InsurancePolicyNumber string `json:"insurancePolicyNumber"`
	Allergies             string `json:"allergies"`
	CurrentMedication     string `json:"currentMedication"`
	FamilyMedicalHistory  string `json:"familyMedicalHistory"`
	PastMedicalHistory    string `json:"pastMedicalHistory"`

	IdentificationType       string `json:"identificationType"`
	IdentificationNumber     string `json:"identificationNumber"`
	IdentificationDocumentID string `json:"identificationDocumentId"`

	TreatmentConsent  bool `json:"treatmentConsent" validate:"consented"`
	DisclosureConsent bool `json:"disclosureConsent" validate:"consented"`
	PrivacyConsent    bool `json:"privacyConsent" validate:"consented"`
}

// AppointmentForm is shared by every mode; the rules applied depend on the
// mode, see formFor.
type AppointmentForm struct {
	PrimaryPhysician   string    `json:"primaryPhysician"`
	Schedule           DateInput `json:"schedule"`
	Reason             string    `json:"reason"`
	Note               string    `json:"note"`
	CancellationReason string    `json:"cancellationReason"`
}

type createAppointmentRules struct {
	PrimaryPhysician   string    `json:"primaryPhysician" validate:"min=2,known_doctor"`
	Schedule           DateInput `json:"schedule" validate:"coerce_datetime"`
	Reason             string    `json:"reason" validate:"min=2,max=500"`
	Note               string    `json:"note"`
	CancellationReason string    `json:"cancellationReason"`
}

type scheduleAppointmentRules struct {
	PrimaryPhysician   string    `json:"primaryPhysician" validate:"min=2,known_doctor"`
	Schedule           DateInput `json:"schedule" validate:"coerce_datetime"`
	Reason             string    `json:"reason"`
	Note               string    `json:"note"`
	CancellationReason string    `json:"cancellationReason"`
}

type cancelAppointmentRules struct {
	PrimaryPhysician   string    `json:"primaryPhysician" validate:"min=2,known_doctor"`
	Schedule           DateInput `json:"schedule" validate:"coerce_datetime"`
	Reason             string    `json:"reason"`
	Note               string    `json:"note"`
	CancellationReason string    `json:"cancellationReason" validate:"min=2,max=500"`
}

// formFor is the only place a mode is turned into a rule set.
func formFor(mode Mode, in AppointmentForm) interface{} {
	switch mode {
	case ModeCreate:
		return createAppointmentRules(in)
	case ModeCancel:
		return cancelAppointmentRules(in)
	default:
		return scheduleAppointmentRules(in)
	}
}
