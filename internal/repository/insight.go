package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/ecolens/ecolens/internal/model"
)

// InsertAnalysis stores a computer-vision analysis record.
func (r *Repository) InsertAnalysis(ctx context.Context, analysis *model.ImageAnalysis) error {
	query := `
		INSERT INTO image_analyses
			(id, owner_id, image_url, detected_objects, estimated_impact, confidence, processing_time_ms, created_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		analysis.ID,
		analysis.OwnerID,
		analysis.ImageURL,
		pq.Array(analysis.DetectedObjects),
		analysis.EstimatedImpact,
		analysis.Confidence,
		analysis.ProcessingTime,
		analysis.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert analysis: %w", err)
	}

	return nil
}

// InsertSimulation stores a simulation run with its result payload.
func (r *Repository) InsertSimulation(ctx context.Context, sim *model.Simulation) error {
	result, err := json.Marshal(sim.Result)
	if err != nil {
		return fmt.Errorf("marshal simulation result: %w", err)
	}

	query := `
		INSERT INTO simulations
			(id, owner_id, country, years_ahead, scenario, result, created_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7)
	`

	_, err = r.pool.Exec(ctx, query,
		sim.ID,
		sim.OwnerID,
		sim.Country,
		sim.YearsAhead,
		sim.Scenario,
		result,
		sim.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert simulation: %w", err)
	}

	return nil
}

// ListAnalysesByOwner returns a user's stored analyses, newest first.
func (r *Repository) ListAnalysesByOwner(ctx context.Context, ownerID string, limit int) ([]*model.ImageAnalysis, error) {
	query := `
		SELECT id, COALESCE(owner_id, ''), image_url, detected_objects, estimated_impact, confidence, processing_time_ms, created_at
		FROM image_analyses
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	var analyses []*model.ImageAnalysis
	for rows.Next() {
		var (
			a       model.ImageAnalysis
			objects []string
		)
		err := rows.Scan(
			&a.ID,
			&a.OwnerID,
			&a.ImageURL,
			pq.Array(&objects),
			&a.EstimatedImpact,
			&a.Confidence,
			&a.ProcessingTime,
			&a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		a.DetectedObjects = objects
		analyses = append(analyses, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate analyses: %w", err)
	}

	return analyses, nil
}
