package roster

import (
	"github.com/gin-gonic/gin"

	"github.com/dentalcare/booking-api/internal/service/roster"
	"github.com/dentalcare/booking-api/pkg/httputil"
)

type Handler struct {
	roster *roster.Roster
}

func NewHandler(r *roster.Roster) *Handler {
	return &Handler{roster: r}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/doctors", h.ListDoctors)
}

// ListDoctors returns the physician names the booking forms may select.
func (h *Handler) ListDoctors(c *gin.Context) {
	httputil.RespondWithSuccess(c, h.roster.List())
}
