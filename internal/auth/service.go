// Package auth verifies the bearer tokens issued by the platform's auth
// provider. Profiles are owned by that provider; this service only needs
// the subject of a valid token.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoSecret     = errors.New("jwt secret not configured")
	ErrInvalidToken = errors.New("invalid token")
)

// Service signs and validates HS256 tokens
type Service struct {
	jwtSecret []byte
	now       func() time.Time
}

// NewService creates a token service. An empty secret disables validation.
func NewService(jwtSecret []byte) *Service {
	return &Service{jwtSecret: jwtSecret, now: time.Now}
}

// Enabled reports whether tokens can be validated
func (s *Service) Enabled() bool {
	return len(s.jwtSecret) > 0
}

// ValidateToken returns the profile ID carried by a valid token. The ID is
// read from "sub", falling back to the legacy "user_id" claim.
func (s *Service) ValidateToken(tokenString string) (string, error) {
	if !s.Enabled() {
		return "", ErrNoSecret
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("%w: bad claims", ErrInvalidToken)
	}

	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		return sub, nil
	}
	if userID, ok := claims["user_id"].(string); ok && userID != "" {
		return userID, nil
	}
	return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
}

// IssueToken signs a token for profileID, used by the seeder and tests to
// act as a seeded profile.
func (s *Service) IssueToken(profileID string, ttl time.Duration) (string, error) {
	if !s.Enabled() {
		return "", ErrNoSecret
	}
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   profileID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
