package validation

// messages holds user-facing text keyed by "field.tag". Tags without a field
// specific entry fall back to defaultMessages.
var messages = map[string]string{
	"name.min":         "Name must be at least 2 characters",
	"email.email":      "Invalid email address",
	"phone.intl_phone": "Invalid phone number",

	"birthDate.coerce_date": "Invalid birth date",
	"gender.oneof":          "Gender must be male, female or other",
	"address.min":           "Address must be at least 5 characters",
	"address.max":           "Address must be at most 500 characters",
	"occupation.min":        "Occupation must be at least 2 characters",
	"occupation.max":        "Occupation must be at most 500 characters",

	"emergencyContactName.min":              "Emergency contact name must be at least 2 characters",
	"emergencyContactNumber.intl_phone":     "Invalid phone number",
	"emergencyContactNumber.distinct_phone": "Phone number and emergency contact number must be different",

	"primaryPhysician.min":          "Select at least one doctor",
	"primaryPhysician.known_doctor": "Select a doctor from the roster",

	"treatmentConsent.consented":  "You must consent to treatment in order to proceed",
	"disclosureConsent.consented": "You must consent to disclosure in order to proceed",
	"privacyConsent.consented":    "You must consent to privacy in order to proceed",

	"schedule.coerce_datetime": "Invalid appointment date",
	"reason.min":               "Reason must be at least 2 characters",
	"reason.max":               "Reason must be at most 500 characters",
	"cancellationReason.min":   "Reason must be at least 2 characters",
	"cancellationReason.max":   "Reason must be at most 500 characters",
}

var defaultMessages = map[string]string{
	"min":             "Value is too short",
	"max":             "Value is too long",
	"email":           "Invalid email format",
	"oneof":           "Value is not allowed",
	tagIntlPhone:      "Invalid phone number",
	tagCoerceDate:     "Invalid date",
	tagCoerceDateTime: "Invalid date",
	tagConsented:      "Consent is required",
	tagKnownDoctor:    "Unknown doctor",
	tagDistinctPhone:  "Values must be different",
}

func messageFor(field, tag string) string {
	if msg, ok := messages[field+"."+tag]; ok {
		return msg
	}
	if msg, ok := defaultMessages[tag]; ok {
		return msg
	}
	return "Invalid value"
}
