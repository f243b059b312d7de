package model

import (
	"time"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Patient is created from a minimal identity and enriched once by registration.
type Patient struct {
	Base
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Registered bool   `json:"registered"`

	BirthDate              *time.Time `json:"birthDate,omitempty"`
	Gender                 Gender     `json:"gender,omitempty"`
	Address                string     `json:"address,omitempty"`
	Occupation             string     `json:"occupation,omitempty"`
	EmergencyContactName   string     `json:"emergencyContactName,omitempty"`
	EmergencyContactNumber string     `json:"emergencyContactNumber,omitempty"`
	PrimaryPhysician       string     `json:"primaryPhysician,omitempty"`

	InsuranceProvider     string `json:"insuranceProvider,omitempty"`
	InsurancePolicyNumber string `json:"insurancePolicyNumber,omitempty"`
	Allergies             string `json:"allergies,omitempty"`
	CurrentMedication     string `json:"currentMedication,omitempty"`
	FamilyMedicalHistory  string `json:"familyMedicalHistory,omitempty"`
	PastMedicalHistory    string `json:"pastMedicalHistory,omitempty"`

	IdentificationType       string `json:"identificationType,omitempty"`
	IdentificationNumber     string `json:"identificationNumber,omitempty"`
	IdentificationDocumentID string `json:"identificationDocumentId,omitempty"`

	TreatmentConsent  bool `json:"treatmentConsent"`
	DisclosureConsent bool `json:"disclosureConsent"`
	PrivacyConsent    bool `json:"privacyConsent"`
}

// UserIdentity is the validated minimal user form.
type UserIdentity struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// PatientRegistration is the validated full registration form.
type PatientRegistration struct {
	UserIdentity
	BirthDate              time.Time `json:"birthDate"`
	Gender                 Gender    `json:"gender"`
	Address                string    `json:"address"`
	Occupation             string    `json:"occupation"`
	EmergencyContactName   string    `json:"emergencyContactName"`
	EmergencyContactNumber string    `json:"emergencyContactNumber"`
	PrimaryPhysician       string    `json:"primaryPhysician"`

	InsuranceProvider     string `json:"insuranceProvider,omitempty"`
	InsurancePolicyNumber string `json:"insurancePolicyNumber,omitempty"`
	Allergies             string `json:"allergies,omitempty"`
	CurrentMedication     string `json:"currentMedication,omitempty"`
	FamilyMedicalHistory  string `json:"familyMedicalHistory,omitempty"`
	PastMedicalHistory    string `json:"pastMedicalHistory,omitempty"`

	IdentificationType       string `json:"identificationType,omitempty"`
	IdentificationNumber     string `json:"identificationNumber,omitempty"`
	IdentificationDocumentID string `json:"identificationDocumentId,omitempty"`

	TreatmentConsent  bool `json:"treatmentConsent"`
	DisclosureConsent bool `json:"disclosureConsent"`
	PrivacyConsent    bool `json:"privacyConsent"`
}

// Apply copies a validated registration onto the patient record.
func (p *Patient) Apply(reg *PatientRegistration) {
	birth := reg.BirthDate
	p.Name = reg.Name
	p.Email = reg.Email
	p.Phone = reg.Phone
	p.BirthDate = &birth
	p.Gender = reg.Gender
	p.Address = reg.Address
	p.Occupation = reg.Occupation
	p.EmergencyContactName = reg.EmergencyContactName
	p.EmergencyContactNumber = reg.EmergencyContactNumber
	p.PrimaryPhysician = reg.PrimaryPhysician
	p.InsuranceProvider = reg.InsuranceProvider
	p.InsurancePolicyNumber = reg.InsurancePolicyNumber
	p.Allergies = reg.Allergies
	p.CurrentMedication = reg.CurrentMedication
	p.FamilyMedicalHistory = reg.FamilyMedicalHistory
	p.PastMedicalHistory = reg.PastMedicalHistory
	p.IdentificationType = reg.IdentificationType
	p.IdentificationNumber = reg.IdentificationNumber
	p.IdentificationDocumentID = reg.IdentificationDocumentID
	p.TreatmentConsent = reg.TreatmentConsent
	p.DisclosureConsent = reg.DisclosureConsent
	p.PrivacyConsent = reg.PrivacyConsent
	p.Registered = true
}
