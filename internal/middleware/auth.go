package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dentalcare/booking-api/internal/service/auth"
	"github.com/dentalcare/booking-api/pkg/errors"
	"github.com/dentalcare/booking-api/pkg/httputil"
)

const ContextAdminSubject = "admin_subject"

type AuthMiddleware struct {
	authService auth.AuthService
}

func NewAuthMiddleware(authService auth.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// RequireAdmin verifies the bearer token and sets the admin subject in context
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httputil.RespondWithError(c, errors.Unauthorized(nil))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			httputil.RespondWithError(c, errors.Unauthorized(nil))
			return
		}

		claims, err := m.authService.ValidateToken(c.Request.Context(), parts[1])
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}

		c.Set(ContextAdminSubject, claims.Subject)
		c.Next()
	}
}
