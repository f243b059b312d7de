package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/dentalcare/booking-api/internal/model"
	"github.com/dentalcare/booking-api/internal/service/auth"
	"github.com/dentalcare/booking-api/pkg/errors"
	"github.com/dentalcare/booking-api/pkg/httputil"
)

type Handler struct {
	service auth.AuthService
}

func NewHandler(service auth.AuthService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/session", h.CreateSession)
}

// CreateSession exchanges the clinic passkey for an admin token.
func (h *Handler) CreateSession(c *gin.Context) {
	var req model.PasskeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errors.NewBadRequest("passkey is required", err))
		return
	}

	session, err := h.service.CreateSession(c.Request.Context(), req.Passkey)
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithSuccess(c, session)
}
