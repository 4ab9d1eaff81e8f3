package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ecolens/ecolens/internal/auth"
	"github.com/ecolens/ecolens/internal/model"
	"github.com/ecolens/ecolens/internal/service"
)

// InsightHandler serves the analysis, simulation and narrative endpoints.
type InsightHandler struct {
	svc    *service.InsightService
	logger *slog.Logger
}

// NewInsightHandler creates a new InsightHandler.
func NewInsightHandler(svc *service.InsightService, logger *slog.Logger) *InsightHandler {
	return &InsightHandler{
		svc:    svc,
		logger: logger,
	}
}

// ownerID returns the authenticated user's ID or "" for anonymous calls.
func ownerID(r *http.Request) string {
	if identity := auth.IdentityFromContext(r.Context()); identity != nil {
		return identity.UserID
	}
	return ""
}

type analyzeRequest struct {
	ImageURL string `json:"imageUrl"`
}

type analyzeResponse struct {
	Success bool                 `json:"success"`
	Data    *model.ImageAnalysis `json:"data"`
}

// Analyze handles POST /api/cv/analyze.
func (h *InsightHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	analysis, err := h.svc.AnalyzeImage(r.Context(), ownerID(r), req.ImageURL)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, analyzeResponse{Success: true, Data: analysis})
}

type simulationRequest struct {
	Country    string `json:"country"`
	YearsAhead int    `json:"yearsAhead"`
	Scenario   string `json:"scenario"`
}

type simulationResponse struct {
	Success bool                    `json:"success"`
	Data    *model.SimulationResult `json:"data"`
}

// RunSimulation handles POST /api/simulation/run.
func (h *InsightHandler) RunSimulation(w http.ResponseWriter, r *http.Request) {
	var req simulationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.svc.RunSimulation(r.Context(), ownerID(r), service.SimulationInput{
		Country:    req.Country,
		YearsAhead: req.YearsAhead,
		Scenario:   req.Scenario,
	})
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, simulationResponse{Success: true, Data: result})
}

type scenariosResponse struct {
	Success   bool             `json:"success"`
	Scenarios []model.Scenario `json:"scenarios"`
}

// Scenarios handles GET /api/simulation/scenarios.
func (h *InsightHandler) Scenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenariosResponse{Success: true, Scenarios: h.svc.Scenarios()})
}

type narrativeResponse struct {
	Success bool             `json:"success"`
	Data    *model.Narrative `json:"data"`
}

// GenerateNarrative handles POST /api/narrative/generate.
func (h *InsightHandler) GenerateNarrative(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, narrativeResponse{Success: true, Data: h.svc.GenerateNarrative(r.Context())})
}

type templatesResponse struct {
	Success   bool                      `json:"success"`
	Templates []model.NarrativeTemplate `json:"templates"`
}

// NarrativeTemplates handles GET /api/narrative/templates.
func (h *InsightHandler) NarrativeTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, templatesResponse{Success: true, Templates: h.svc.NarrativeTemplates()})
}

type historyResponse struct {
	Success  bool                   `json:"success"`
	Count    int                    `json:"count"`
	Analyses []*model.ImageAnalysis `json:"analyses"`
}

// History handles GET /api/cv/history.
func (h *InsightHandler) History(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	if identity == nil {
		writeError(w, http.StatusUnauthorized, "Not authorized to access this route")
		return
	}

	analyses, err := h.svc.History(r.Context(), identity.UserID, 20)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	if analyses == nil {
		analyses = []*model.ImageAnalysis{}
	}

	writeJSON(w, http.StatusOK, historyResponse{
		Success:  true,
		Count:    len(analyses),
		Analyses: analyses,
	})
}
