// Package auth provides token issuance/verification and password hashing.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ecolens/ecolens/internal/model"
)

// Token errors.
var (
	// ErrInvalidToken indicates a malformed token or a signature mismatch.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken indicates a structurally valid token past its expiry.
	ErrExpiredToken = errors.New("token expired")
)

// Claims are the identity attributes embedded in a bearer token.
type Claims struct {
	jwt.RegisteredClaims
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}

// UserID returns the subject claim.
func (c *Claims) UserID() string {
	return c.Subject
}

// TokenConfig holds the signing secret and default validity window.
// Both are injected at construction; there is no ambient global state.
type TokenConfig struct {
	Secret []byte
	Expiry time.Duration
}

// TokenService issues and verifies signed, self-contained bearer tokens.
// Tokens are stateless: invalidation happens only by expiry or by the
// per-request re-resolution of the user record.
type TokenService struct {
	secret []byte
	expiry time.Duration
}

// NewTokenService creates a TokenService from config.
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token secret must not be empty")
	}
	if cfg.Expiry <= 0 {
		return nil, errors.New("token expiry must be positive")
	}
	return &TokenService{secret: cfg.Secret, expiry: cfg.Expiry}, nil
}

// Issue signs a token carrying the identity claims with the default expiry.
func (s *TokenService) Issue(identity model.Identity) (string, error) {
	return s.IssueWithExpiry(identity, s.expiry)
}

// IssueWithExpiry signs a token with an explicit validity duration.
func (s *TokenService) IssueWithExpiry(identity model.Identity, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
		Email: identity.Email,
		Role:  identity.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify validates the signature and expiry of a token and returns its claims.
// No claim is trusted before signature validation succeeds.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Decode parses a token without verifying its signature.
// For informational use only (diagnostics, expiry inspection); the result
// must never feed an authorization decision.
func (s *TokenService) Decode(tokenString string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// IsExpired reports whether the token is past its expiry.
// Any decode failure or missing exp claim counts as expired (fail-closed).
func (s *TokenService) IsExpired(tokenString string) bool {
	claims, err := s.Decode(tokenString)
	if err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return true
	}
	return !claims.ExpiresAt.After(time.Now())
}

// Expiration returns the expiry time embedded in the token, or nil when the
// token cannot be decoded or carries no exp claim.
func (s *TokenService) Expiration(tokenString string) *time.Time {
	claims, err := s.Decode(tokenString)
	if err != nil || claims.ExpiresAt == nil {
		return nil
	}
	t := claims.ExpiresAt.Time
	return &t
}
