package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/ecolens/ecolens/internal/auth"
	"github.com/ecolens/ecolens/internal/metrics"
	"github.com/ecolens/ecolens/internal/model"
	"github.com/ecolens/ecolens/internal/repository"
)

// Auth service errors.
var (
	ErrInvalidName        = errors.New("name must be between 2 and 50 characters and contain only letters and spaces")
	ErrInvalidEmail       = errors.New("please provide a valid email address")
	ErrWeakPassword       = errors.New("password must be at least 6 characters with one uppercase letter, one lowercase letter, and one number")
	ErrMissingCredentials = errors.New("please provide an email and password")
	ErrEmailTaken         = errors.New("user already exists with this email")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDeactivated = errors.New("account is deactivated")
	ErrUserGone           = errors.New("user no longer exists")
	ErrInvalidCountryPref = errors.New("country code must be 2-3 characters")
	ErrInvalidUnits       = errors.New("units must be either metric or imperial")
)

// Name: 2-50 chars, letters and spaces only.
var namePattern = regexp.MustCompile(`^[a-zA-Z ]{2,50}$`)

// AuthService handles registration, login and profile management.
type AuthService struct {
	store   UserStore
	tokens  *auth.TokenService
	metrics metrics.Recorder
}

// NewAuthService creates a new AuthService.
func NewAuthService(store UserStore, tokens *auth.TokenService, recorder metrics.Recorder) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AuthService{
		store:   store,
		tokens:  tokens,
		metrics: recorder,
	}
}

// RegisterInput defines input for account creation.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// RegisterOutput carries the new account's ID and its first token.
type RegisterOutput struct {
	UserID string
	Token  string
}

// Register creates a user account and issues its first token.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*RegisterOutput, error) {
	name := strings.TrimSpace(input.Name)
	if !namePattern.MatchString(name) {
		return nil, ErrInvalidName
	}

	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, ErrInvalidEmail
	}

	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}

	// Fast-path duplicate check; the unique index is the real guarantee.
	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           ulid.Make().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleUser,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Issue(model.Identity{UserID: user.ID, Email: user.Email, Role: user.Role})
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.metrics.IncRegistration()

	return &RegisterOutput{UserID: user.ID, Token: token}, nil
}

// Login verifies credentials and issues a token.
// Unknown email and wrong password produce the same error so the endpoint
// does not leak account existence.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return "", ErrMissingCredentials
	}

	normalized, err := normalizeEmail(email)
	if err != nil {
		return "", ErrInvalidEmail
	}

	user, err := s.store.GetUserByEmailWithPassword(ctx, normalized)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncLoginFailure("credentials")
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}

	match, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !match {
		s.metrics.IncLoginFailure("credentials")
		return "", ErrInvalidCredentials
	}

	if !user.IsActive {
		s.metrics.IncLoginFailure("deactivated")
		return "", ErrAccountDeactivated
	}

	if err := s.store.UpdateLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		return "", fmt.Errorf("update last login: %w", err)
	}

	token, err := s.tokens.Issue(model.Identity{UserID: user.ID, Email: user.Email, Role: user.Role})
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	s.metrics.IncLoginSuccess()

	return token, nil
}

// Profile returns the client-facing view of a user.
func (s *AuthService) Profile(ctx context.Context, userID string) (*model.Profile, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserGone
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	profile := user.ToProfile()
	return &profile, nil
}

// UpdateProfileInput defines the client-settable profile fields.
// Role and active flag are deliberately absent.
type UpdateProfileInput struct {
	Name        *string
	Preferences *model.Preferences
}

// UpdateProfile updates name and/or preferences. Preference updates merge
// into the stored value rather than replacing it.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*model.Profile, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserGone
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	name := user.Name
	if input.Name != nil {
		name = strings.TrimSpace(*input.Name)
		if !namePattern.MatchString(name) {
			return nil, ErrInvalidName
		}
	}

	prefs := user.Preferences
	if input.Preferences != nil {
		if err := validatePreferences(*input.Preferences); err != nil {
			return nil, err
		}
		prefs = input.Preferences.Merge(user.Preferences)
	}

	updated, err := s.store.UpdateUserProfile(ctx, userID, name, prefs)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserGone
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}

	profile := updated.ToProfile()
	return &profile, nil
}

// ListUsers returns accounts for the admin surface.
func (s *AuthService) ListUsers(ctx context.Context, limit, offset int) ([]*model.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListUsers(ctx, limit, offset)
}

// SetUserActive flips an account's active flag (admin operation).
func (s *AuthService) SetUserActive(ctx context.Context, userID string, active bool) error {
	if err := s.store.SetUserActive(ctx, userID, active); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserGone
		}
		return fmt.Errorf("set user active: %w", err)
	}
	return nil
}

// normalizeEmail lowercases and trims an email address after validating it.
func normalizeEmail(email string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed {
		return "", ErrInvalidEmail
	}
	return trimmed, nil
}

// validatePassword enforces the minimum password policy:
// at least 6 characters with one uppercase letter, one lowercase letter
// and one digit.
func validatePassword(password string) error {
	if len(password) < 6 {
		return ErrWeakPassword
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}

	if !hasUpper || !hasLower || !hasDigit {
		return ErrWeakPassword
	}
	return nil
}

// validatePreferences checks the recognized preference keys.
func validatePreferences(prefs model.Preferences) error {
	if prefs.DefaultCountry != "" && !model.ValidCountryCode(prefs.DefaultCountry) {
		return ErrInvalidCountryPref
	}
	if prefs.Units != "" && prefs.Units != model.UnitsMetric && prefs.Units != model.UnitsImperial {
		return ErrInvalidUnits
	}
	return nil
}
