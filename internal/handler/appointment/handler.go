package appointment

import (
	"github.com/gin-gonic/gin"

	"github.com/dentalcare/booking-api/internal/service/appointment"
	"github.com/dentalcare/booking-api/internal/validation"
	"github.com/dentalcare/booking-api/pkg/errors"
	"github.com/dentalcare/booking-api/pkg/httputil"
)

type createRequest struct {
	PatientID string `json:"patientId"`
	UserID    string `json:"userId"`
	validation.AppointmentForm
}

// updateRequest is the admin decision: type is schedule or cancel.
type updateRequest struct {
	Type        string                     `json:"type"`
	Appointment validation.AppointmentForm `json:"appointment"`
}

type Handler struct {
	service appointment.AppointmentService
}

func NewHandler(service appointment.AppointmentService) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the patient-facing routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.POST("", h.CreateAppointment)
		appointments.GET("/:id", h.GetAppointment)
	}
}

// RegisterAdminRoutes mounts the dashboard routes on an authenticated group.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.GET("", h.ListAppointments)
		appointments.PUT("/:id", h.UpdateAppointment)
	}
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errors.NewBadRequest("invalid request body", err))
		return
	}

	apt, err := h.service.Create(c.Request.Context(), appointment.CreateParams{
		PatientID: req.PatientID,
		UserID:    req.UserID,
		Form:      req.AppointmentForm,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithCreated(c, apt)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	apt, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	list, err := h.service.ListRecent(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithSuccess(c, list)
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errors.NewBadRequest("invalid request body", err))
		return
	}

	mode := validation.ParseMode(req.Type)
	apt, err := h.service.Update(c.Request.Context(), c.Param("id"), mode, req.Appointment)
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithSuccess(c, apt)
}
