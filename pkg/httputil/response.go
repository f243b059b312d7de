package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/dentalcare/booking-api/pkg/errors"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response wraps all API responses
type Response struct {
	Status  string              `json:"status"`
	Message string              `json:"message,omitempty"`
	Data    interface{}         `json:"data,omitempty"`
	Errors  []errors.FieldError `json:"errors,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: StatusSuccess,
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  StatusError,
		Message: message,
	}
}

// RespondWithSuccess sends a 200 response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, NewSuccessResponse(data))
}

// RespondWithCreated sends a 201 response
func RespondWithCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, NewSuccessResponse(data))
}

// RespondWithError renders err with the status its type maps to. Store and
// internal failures are logged; their details never reach the client.
func RespondWithError(c *gin.Context, err error) {
	status, body := ErrorResponse(err)
	if status >= http.StatusInternalServerError {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Msg("request failed")
	}
	c.AbortWithStatusJSON(status, body)
}

// ErrorResponse maps an error to its HTTP status and envelope.
func ErrorResponse(err error) (int, *Response) {
	if vErr, ok := errors.AsValidation(err); ok {
		return vErr.StatusCode(), &Response{
			Status:  StatusError,
			Message: "validation failed",
			Errors:  vErr.Fields,
		}
	}

	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		status := appErr.StatusCode()
		message := appErr.Message
		if status == http.StatusInternalServerError {
			message = "internal server error"
		}
		return status, NewErrorResponse(message)
	}

	return http.StatusInternalServerError, NewErrorResponse("internal server error")
}
