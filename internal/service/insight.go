package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/ecolens/ecolens/internal/metrics"
	"github.com/ecolens/ecolens/internal/model"
)

// Insight service errors.
var (
	ErrInvalidCountryName = errors.New("country name must be between 2 and 50 characters")
	ErrInvalidYearsAhead  = errors.New("years ahead must be between 1 and 50")
	ErrInvalidScenario    = errors.New("unknown scenario")
	ErrMissingImage       = errors.New("no image provided")
)

// Selectable simulation scenarios.
var scenarios = []model.Scenario{
	{ID: "current_path", Name: "Current Path", Description: "Continue current lifestyle patterns"},
	{ID: "improved_path", Name: "Improved Path", Description: "Implement suggested improvements"},
	{ID: "no_action", Name: "No Action", Description: "No changes over time"},
}

// Selectable narrative templates.
var narrativeTemplates = []model.NarrativeTemplate{
	{ID: "personal_impact", Name: "Personal Impact", Description: "Focus on individual carbon footprint"},
	{ID: "global_perspective", Name: "Global Perspective", Description: "Broader environmental impact"},
}

// InsightService produces the analysis, simulation and narrative payloads.
// The model outputs are mocked placeholders until the real models land;
// every run is still validated and persisted for the audit trail.
type InsightService struct {
	store   InsightStore
	metrics metrics.Recorder
}

// NewInsightService creates a new InsightService.
func NewInsightService(store InsightStore, recorder metrics.Recorder) *InsightService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &InsightService{store: store, metrics: recorder}
}

// AnalyzeImage records an image analysis for the (possibly anonymous) owner
// and returns the detection result.
func (s *InsightService) AnalyzeImage(ctx context.Context, ownerID, imageURL string) (*model.ImageAnalysis, error) {
	if strings.TrimSpace(imageURL) == "" {
		return nil, ErrMissingImage
	}

	analysis := &model.ImageAnalysis{
		ID:              ulid.Make().String(),
		OwnerID:         ownerID,
		ImageURL:        imageURL,
		DetectedObjects: []string{"car", "smokestack"},
		EstimatedImpact: "High",
		Confidence:      0.92,
		ProcessingTime:  1500,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.store.InsertAnalysis(ctx, analysis); err != nil {
		return nil, fmt.Errorf("store analysis: %w", err)
	}
	s.metrics.IncAnalysisStored()

	return analysis, nil
}

// SimulationInput defines input for a simulation run.
type SimulationInput struct {
	Country    string
	YearsAhead int
	Scenario   string
}

// RunSimulation validates the input, records the run and returns the
// projected emissions.
func (s *InsightService) RunSimulation(ctx context.Context, ownerID string, input SimulationInput) (*model.SimulationResult, error) {
	country := strings.TrimSpace(input.Country)
	if country == "" {
		country = "Pakistan"
	}
	if len(country) < 2 || len(country) > 50 {
		return nil, ErrInvalidCountryName
	}

	if input.YearsAhead < 1 || input.YearsAhead > 50 {
		return nil, ErrInvalidYearsAhead
	}

	scenario := input.Scenario
	if scenario == "" {
		scenario = "current_path"
	}
	if !validScenario(scenario) {
		return nil, ErrInvalidScenario
	}

	result := &model.SimulationResult{
		Country: country,
		PredictedEmissions: []model.PredictedEmission{
			{Year: 2025, Value: 270},
			{Year: 2030, Value: 320},
		},
		Scenario:   scenario,
		Confidence: 0.85,
	}

	sim := &model.Simulation{
		ID:         ulid.Make().String(),
		OwnerID:    ownerID,
		Country:    country,
		YearsAhead: input.YearsAhead,
		Scenario:   scenario,
		Result:     *result,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.store.InsertSimulation(ctx, sim); err != nil {
		return nil, fmt.Errorf("store simulation: %w", err)
	}
	s.metrics.IncSimulationStored()

	return result, nil
}

// Scenarios lists the selectable simulation scenarios.
func (s *InsightService) Scenarios() []model.Scenario {
	return scenarios
}

// GenerateNarrative returns the climate-impact narrative for the given data.
func (s *InsightService) GenerateNarrative(ctx context.Context) *model.Narrative {
	return &model.Narrative{
		Narrative: "Based on your current lifestyle choices, by 2030 your carbon footprint could contribute to a 0.2°C temperature increase. However, by implementing the suggested changes, you could reduce your impact by 60% and help limit global warming.",
		KeyPoints: []string{
			"Transportation accounts for 45% of your carbon footprint",
			"Switching to renewable energy could save 2.3 tons CO2/year",
			"Reducing consumption could save 1.8 tons CO2/year",
		},
		Recommendations: []string{
			"Consider electric or hybrid vehicle",
			"Install solar panels",
			"Reduce single-use items",
		},
	}
}

// NarrativeTemplates lists the selectable narrative templates.
func (s *InsightService) NarrativeTemplates() []model.NarrativeTemplate {
	return narrativeTemplates
}

// History returns a user's stored analyses, newest first.
func (s *InsightService) History(ctx context.Context, ownerID string, limit int) ([]*model.ImageAnalysis, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.store.ListAnalysesByOwner(ctx, ownerID, limit)
}

func validScenario(id string) bool {
	for _, s := range scenarios {
		if s.ID == id {
			return true
		}
	}
	return false
}
