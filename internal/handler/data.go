package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ecolens/ecolens/internal/model"
	"github.com/ecolens/ecolens/internal/service"
)

// DataHandler serves the CO2 emission data endpoints.
type DataHandler struct {
	svc    *service.DataService
	logger *slog.Logger
}

// NewDataHandler creates a new DataHandler.
func NewDataHandler(svc *service.DataService, logger *slog.Logger) *DataHandler {
	return &DataHandler{
		svc:    svc,
		logger: logger,
	}
}

type seriesResponse struct {
	Success bool             `json:"success"`
	Data    *model.CO2Series `json:"data"`
}

// GlobalCO2 handles GET /api/data/co2/global.
func (h *DataHandler) GlobalCO2(w http.ResponseWriter, r *http.Request) {
	series, err := h.svc.GlobalSeries(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, seriesResponse{Success: true, Data: series})
}

// CountryCO2 handles GET /api/data/co2/country/{code}.
func (h *DataHandler) CountryCO2(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	series, err := h.svc.CountrySeries(r.Context(), code)
	if err != nil {
		if errors.Is(err, service.ErrCountryNotFound) {
			writeError(w, http.StatusNotFound,
				fmt.Sprintf("No CO2 data available for country code: %s", strings.ToUpper(code)))
			return
		}
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, seriesResponse{Success: true, Data: series})
}

type timelineResponse struct {
	Success bool            `json:"success"`
	Data    *model.Timeline `json:"data"`
}

// Timeline handles GET /api/visualization/timeline/{code}.
func (h *DataHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	timeline, err := h.svc.Timeline(r.Context(), code)
	if err != nil {
		if errors.Is(err, service.ErrCountryNotFound) {
			writeError(w, http.StatusNotFound,
				fmt.Sprintf("No CO2 data available for country code: %s", strings.ToUpper(code)))
			return
		}
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, timelineResponse{Success: true, Data: timeline})
}
