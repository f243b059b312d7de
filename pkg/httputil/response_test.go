package httputil

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dentalcare/booking-api/pkg/errors"
)

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"not found", fmt.Errorf("failed to get appointment: %w", errors.NewNotFound("document", nil)), http.StatusNotFound, "document not found"},
		{"conflict", errors.NewConflict("patient is already registered"), http.StatusConflict, "patient is already registered"},
		{"unauthorized", errors.Unauthorized(nil), http.StatusUnauthorized, "unauthorized"},
		{"store", errors.NewStore("get", fmt.Errorf("dial tcp: refused")), http.StatusBadGateway, "document store get failed"},
		{"bad request", errors.NewBadRequest("invalid request body", nil), http.StatusBadRequest, "invalid request body"},
		{"internal", errors.NewInternal(fmt.Errorf("secret detail")), http.StatusInternalServerError, "internal server error"},
		{"plain", fmt.Errorf("boom"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := ErrorResponse(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, StatusError, body.Status)
			assert.Equal(t, tt.message, body.Message)
			assert.Empty(t, body.Errors)
		})
	}
}

func TestErrorResponseValidation(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", errors.NewValidation(
		errors.FieldError{Field: "reason", Message: "Reason must be at least 2 characters"},
		errors.FieldError{Field: "schedule", Message: "Invalid appointment date"},
	))

	status, body := ErrorResponse(err)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "validation failed", body.Message)
	assert.Len(t, body.Errors, 2)
	assert.Equal(t, "reason", body.Errors[0].Field)
}
