package auth

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/dentalcare/booking-api/internal/model"
	"github.com/dentalcare/booking-api/pkg/auth"
	"github.com/dentalcare/booking-api/pkg/errors"
	"github.com/dentalcare/booking-api/pkg/security"
)

const adminSubject = "admin"

type AuthService interface {
	CreateSession(ctx context.Context, passkey string) (*model.Session, error)
	ValidateToken(ctx context.Context, token string) (*auth.Claims, error)
}

type Service struct {
	hasher      security.PasswordHasher
	passkeyHash string
	jwtSvc      auth.JWTService
}

func NewService(hasher security.PasswordHasher, passkeyHash string, jwtSvc auth.JWTService) *Service {
	return &Service{
		hasher:      hasher,
		passkeyHash: passkeyHash,
		jwtSvc:      jwtSvc,
	}
}

// CreateSession trades the clinic passkey for an admin token.
func (s *Service) CreateSession(ctx context.Context, passkey string) (*model.Session, error) {
	if passkey == "" || s.passkeyHash == "" {
		return nil, errors.Unauthorized(nil)
	}
	if err := s.hasher.Compare(s.passkeyHash, passkey); err != nil {
		zerolog.Ctx(ctx).Warn().Msg("admin passkey rejected")
		return nil, errors.Unauthorized(err)
	}

	token, expiresAt, err := s.jwtSvc.GenerateToken(adminSubject, auth.RoleAdmin)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &model.Session{Token: token, TokenType: "Bearer", ExpiresAt: expiresAt}, nil
}

// ValidateToken accepts only unexpired admin tokens.
func (s *Service) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, errors.Unauthorized(err)
	}
	if claims.Role != auth.RoleAdmin {
		return nil, errors.Unauthorized(nil)
	}
	return claims, nil
}
