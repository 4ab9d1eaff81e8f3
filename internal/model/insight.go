package model

import "time"

// ImageAnalysis is a stored computer-vision analysis result.
// The detection itself is mocked; the record keeps the audit trail.
type ImageAnalysis struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"ownerId,omitempty"` // empty for anonymous uploads
	ImageURL        string    `json:"imageUrl,omitempty"`
	DetectedObjects []string  `json:"detectedObjects"`
	EstimatedImpact string    `json:"estimatedImpact"`
	Confidence      float64   `json:"confidence"`
	ProcessingTime  int       `json:"processingTime"` // milliseconds
	CreatedAt       time.Time `json:"createdAt"`
}

// PredictedEmission is one projected data point of a simulation run.
type PredictedEmission struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// SimulationResult is the payload returned by a simulation run.
type SimulationResult struct {
	Country            string              `json:"country"`
	PredictedEmissions []PredictedEmission `json:"predictedEmissions"`
	Scenario           string              `json:"scenario"`
	Confidence         float64             `json:"confidence"`
}

// Simulation is a stored simulation run with its input echo.
type Simulation struct {
	ID         string           `json:"id"`
	OwnerID    string           `json:"ownerId,omitempty"`
	Country    string           `json:"country"`
	YearsAhead int              `json:"yearsAhead"`
	Scenario   string           `json:"scenario"`
	Result     SimulationResult `json:"result"`
	CreatedAt  time.Time        `json:"createdAt"`
}

// Scenario describes a selectable simulation scenario.
type Scenario struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Narrative is a generated climate-impact story.
type Narrative struct {
	Narrative       string   `json:"narrative"`
	KeyPoints       []string `json:"keyPoints"`
	Recommendations []string `json:"recommendations"`
}

// NarrativeTemplate describes a selectable narrative style.
type NarrativeTemplate struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
