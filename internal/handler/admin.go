package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ecolens/ecolens/internal/model"
	"github.com/ecolens/ecolens/internal/service"
)

// AdminHandler serves the admin-only account surface.
type AdminHandler struct {
	svc    *service.AuthService
	logger *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(svc *service.AuthService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		svc:    svc,
		logger: logger,
	}
}

type listUsersResponse struct {
	Success bool          `json:"success"`
	Count   int           `json:"count"`
	Users   []*model.User `json:"users"`
}

// ListUsers handles GET /api/admin/users.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit := 20
	if l := query.Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}
	offset := 0
	if o := query.Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	users, err := h.svc.ListUsers(r.Context(), limit, offset)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	if users == nil {
		users = []*model.User{}
	}

	writeJSON(w, http.StatusOK, listUsersResponse{
		Success: true,
		Count:   len(users),
		Users:   users,
	})
}

type setActiveRequest struct {
	IsActive *bool `json:"isActive"`
}

type setActiveResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SetUserActive handles PATCH /api/admin/users/{id}/active.
func (h *AdminHandler) SetUserActive(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "User ID is required")
		return
	}

	var req setActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IsActive == nil {
		writeError(w, http.StatusBadRequest, "isActive boolean is required")
		return
	}

	if err := h.svc.SetUserActive(r.Context(), id, *req.IsActive); err != nil {
		// A missing target here is a 404, not an auth failure.
		if errors.Is(err, service.ErrUserGone) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("user_active_changed",
		"user_id", id,
		"is_active", *req.IsActive,
	)

	message := "User activated"
	if !*req.IsActive {
		message = "User deactivated"
	}
	writeJSON(w, http.StatusOK, setActiveResponse{Success: true, Message: message})
}
