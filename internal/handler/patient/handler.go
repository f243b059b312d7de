package patient

import (
	"github.com/gin-gonic/gin"

	"github.com/dentalcare/booking-api/internal/service/patient"
	"github.com/dentalcare/booking-api/internal/validation"
	"github.com/dentalcare/booking-api/pkg/errors"
	"github.com/dentalcare/booking-api/pkg/httputil"
)

type Handler struct {
	service patient.PatientService
}

func NewHandler(service patient.PatientService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.POST("", h.CreateUser)
		patients.GET("/:id", h.GetPatient)
		patients.PUT("/:id/register", h.Register)
	}
}

func (h *Handler) CreateUser(c *gin.Context) {
	var form validation.UserForm
	if err := c.ShouldBindJSON(&form); err != nil {
		_ = c.Error(errors.NewBadRequest("invalid request body", err))
		return
	}

	p, err := h.service.CreateUser(c.Request.Context(), form)
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithCreated(c, p)
}

func (h *Handler) GetPatient(c *gin.Context) {
	p, err := h.service.GetPatient(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithSuccess(c, p)
}

func (h *Handler) Register(c *gin.Context) {
	var form validation.PatientForm
	if err := c.ShouldBindJSON(&form); err != nil {
		_ = c.Error(errors.NewBadRequest("invalid request body", err))
		return
	}

	p, err := h.service.Register(c.Request.Context(), c.Param("id"), form)
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithSuccess(c, p)
}
