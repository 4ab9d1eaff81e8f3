package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ecolens/ecolens/internal/service"
)

// handleServiceError maps service sentinels onto HTTP responses.
// Anything unrecognized is logged and answered with a bare 500 so
// internal detail never leaks to the client.
func handleServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidName):
		writeError(w, http.StatusBadRequest, "Name must be between 2 and 50 characters and contain only letters and spaces")
	case errors.Is(err, service.ErrInvalidEmail):
		writeError(w, http.StatusBadRequest, "Please provide a valid email address")
	case errors.Is(err, service.ErrWeakPassword):
		writeError(w, http.StatusBadRequest, "Password must be at least 6 characters with one uppercase letter, one lowercase letter, and one number")
	case errors.Is(err, service.ErrMissingCredentials):
		writeError(w, http.StatusBadRequest, "Please provide an email and password")
	case errors.Is(err, service.ErrEmailTaken):
		writeError(w, http.StatusBadRequest, "User already exists with this email")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, service.ErrAccountDeactivated):
		writeError(w, http.StatusUnauthorized, "Account is deactivated")
	case errors.Is(err, service.ErrUserGone):
		writeError(w, http.StatusUnauthorized, "User no longer exists")
	case errors.Is(err, service.ErrInvalidCountryPref):
		writeError(w, http.StatusBadRequest, "Country code must be 2-3 characters")
	case errors.Is(err, service.ErrInvalidUnits):
		writeError(w, http.StatusBadRequest, "Units must be either metric or imperial")
	case errors.Is(err, service.ErrInvalidCountryCode):
		writeError(w, http.StatusBadRequest, "Invalid country code format")
	case errors.Is(err, service.ErrInvalidCountryName):
		writeError(w, http.StatusBadRequest, "Country name must be between 2 and 50 characters")
	case errors.Is(err, service.ErrInvalidYearsAhead):
		writeError(w, http.StatusBadRequest, "Years ahead must be between 1 and 50")
	case errors.Is(err, service.ErrInvalidScenario):
		writeError(w, http.StatusBadRequest, "Unknown scenario")
	case errors.Is(err, service.ErrMissingImage):
		writeError(w, http.StatusBadRequest, "No image provided")
	default:
		logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "Server Error")
	}
}
