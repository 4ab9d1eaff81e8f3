package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ecolens/ecolens/internal/auth"
	"github.com/ecolens/ecolens/internal/model"
	"github.com/ecolens/ecolens/internal/service"
)

// UserHandler serves the authenticated user's profile.
type UserHandler struct {
	svc    *service.AuthService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *service.AuthService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		svc:    svc,
		logger: logger,
	}
}

type profileResponse struct {
	Success bool          `json:"success"`
	User    model.Profile `json:"user"`
}

// Me handles GET /api/user/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	if identity == nil {
		writeError(w, http.StatusUnauthorized, "Not authorized to access this route")
		return
	}

	profile, err := h.svc.Profile(r.Context(), identity.UserID)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{Success: true, User: *profile})
}

type updateProfileRequest struct {
	Name        *string            `json:"name"`
	Preferences *model.Preferences `json:"preferences"`
}

// UpdateMe handles PUT /api/user/me.
// Only name and preferences are settable; preference updates merge into
// the stored value.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	if identity == nil {
		writeError(w, http.StatusUnauthorized, "Not authorized to access this route")
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	profile, err := h.svc.UpdateProfile(r.Context(), identity.UserID, service.UpdateProfileInput{
		Name:        req.Name,
		Preferences: req.Preferences,
	})
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("profile_updated",
		"user_id", identity.UserID,
	)

	writeJSON(w, http.StatusOK, profileResponse{Success: true, User: *profile})
}
