package jwt

import (
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/simha10/SAMS-sub000/internal/config"
)

// Service issues and validates the HS256 access tokens used by the
// employee and manager endpoints.
type Service struct {
	auth       *jwtauth.JWTAuth
	expiration time.Duration
}

func NewService(cfg config.JWTConfig) *Service {
	expiration, err := time.ParseDuration(cfg.AccessExpiration)
	if err != nil {
		expiration = time.Hour
	}
	return &Service{
		auth:       jwtauth.New("HS256", []byte(cfg.Secret), nil),
		expiration: expiration,
	}
}

// JWTAuth exposes the underlying authenticator for router middleware.
func (s *Service) JWTAuth() *jwtauth.JWTAuth {
	return s.auth
}

// GenerateAccessToken mints a token carrying the user's identity and role.
func (s *Service) GenerateAccessToken(userID, role string) (string, error) {
	now := time.Now()
	claims := map[string]interface{}{
		"user_id": userID,
		"role":    role,
		"type":    "access",
		"iat":     now.Unix(),
		"exp":     now.Add(s.expiration).Unix(),
	}

	_, tokenString, err := s.auth.Encode(claims)
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}
	return tokenString, nil
}
