// Package service provides business logic for the application.
package service

import (
	"context"
	"time"

	"github.com/ecolens/ecolens/internal/model"
)

// UserStore is the credential-store contract the auth service depends on.
// *repository.Repository satisfies it; tests substitute an in-memory fake.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByEmailWithPassword(ctx context.Context, email string) (*model.User, error)
	UpdateUserProfile(ctx context.Context, id, name string, prefs model.Preferences) (*model.User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	SetUserActive(ctx context.Context, id string, active bool) error
	ListUsers(ctx context.Context, limit, offset int) ([]*model.User, error)
}

// CO2Store is the emission-data contract the data service depends on.
type CO2Store interface {
	GetGlobalSeries(ctx context.Context) (*model.CO2Series, error)
	GetCountrySeries(ctx context.Context, countryCode string) (*model.CO2Series, error)
}

// SeriesCache is the cache contract for emission series.
type SeriesCache interface {
	GetSeries(ctx context.Context, countryCode string) (*model.CO2Series, error)
	SetSeries(ctx context.Context, countryCode string, series *model.CO2Series, ttl time.Duration) error
}

// InsightStore persists analysis and simulation records.
type InsightStore interface {
	InsertAnalysis(ctx context.Context, analysis *model.ImageAnalysis) error
	InsertSimulation(ctx context.Context, sim *model.Simulation) error
	ListAnalysesByOwner(ctx context.Context, ownerID string, limit int) ([]*model.ImageAnalysis, error)
}
