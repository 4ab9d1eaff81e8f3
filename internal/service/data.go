package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ecolens/ecolens/internal/metrics"
	"github.com/ecolens/ecolens/internal/model"
	"github.com/ecolens/ecolens/internal/repository"
)

// Data service errors.
var (
	ErrInvalidCountryCode = errors.New("invalid country code format")
	ErrCountryNotFound    = errors.New("no CO2 data available for country code")
)

// fallbackSeries are the built-in sample datasets served when the database
// holds no rows yet, mirroring the seeded reference data.
var fallbackSeries = map[string]model.CO2Series{
	model.GlobalCode: {
		Years:     []int{2000, 2005, 2010, 2015, 2020},
		Emissions: []float64{280, 310, 340, 400, 420},
	},
	"PK": {
		Country:   "Pakistan",
		Years:     []int{2000, 2005, 2010, 2020},
		Emissions: []float64{100, 120, 180, 250},
	},
	"US": {
		Country:   "United States",
		Years:     []int{2000, 2005, 2010, 2020},
		Emissions: []float64{6000, 6200, 5800, 5400},
	},
}

// DataService serves CO2 emission series with a cache in front of the store.
type DataService struct {
	store    CO2Store
	cache    SeriesCache
	cacheTTL time.Duration
	metrics  metrics.Recorder
}

// NewDataService creates a new DataService. cache may be nil to disable caching.
func NewDataService(store CO2Store, cache SeriesCache, cacheTTL time.Duration, recorder metrics.Recorder) *DataService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &DataService{
		store:    store,
		cache:    cache,
		cacheTTL: cacheTTL,
		metrics:  recorder,
	}
}

// GlobalSeries returns the worldwide emission series.
// Falls back to the built-in sample when the table is empty.
func (s *DataService) GlobalSeries(ctx context.Context) (*model.CO2Series, error) {
	if series := s.fromCache(ctx, model.GlobalCode); series != nil {
		return series, nil
	}

	start := time.Now()
	series, err := s.store.GetGlobalSeries(ctx)
	s.metrics.ObserveSeriesLookupDuration(time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("fetch global series: %w", err)
	}

	if len(series.Years) == 0 {
		fallback := fallbackSeries[model.GlobalCode]
		return &fallback, nil
	}

	s.toCache(ctx, model.GlobalCode, series)
	return series, nil
}

// CountrySeries returns the emission series for a 2-3 letter country code.
func (s *DataService) CountrySeries(ctx context.Context, countryCode string) (*model.CO2Series, error) {
	if !model.ValidCountryCode(countryCode) {
		return nil, ErrInvalidCountryCode
	}
	code := strings.ToUpper(countryCode)

	if series := s.fromCache(ctx, code); series != nil {
		return series, nil
	}

	start := time.Now()
	series, err := s.store.GetCountrySeries(ctx, code)
	s.metrics.ObserveSeriesLookupDuration(time.Since(start))
	if err != nil {
		if errors.Is(err, repository.ErrNoSeriesData) {
			// Keep the original behavior: a known sample country still
			// gets data when the table is empty, everything else 404s.
			if fallback, ok := fallbackSeries[code]; ok {
				return &fallback, nil
			}
			return nil, ErrCountryNotFound
		}
		return nil, fmt.Errorf("fetch country series: %w", err)
	}

	s.toCache(ctx, code, series)
	return series, nil
}

// Timeline returns a country's series reshaped for chart rendering.
func (s *DataService) Timeline(ctx context.Context, countryCode string) (*model.Timeline, error) {
	series, err := s.CountrySeries(ctx, countryCode)
	if err != nil {
		return nil, err
	}

	timeline := &model.Timeline{
		Country:  series.Country,
		Timeline: make([]model.TimelinePoint, 0, len(series.Years)),
	}
	for i, year := range series.Years {
		timeline.Timeline = append(timeline.Timeline, model.TimelinePoint{
			Year:  year,
			Value: series.Emissions[i],
		})
	}

	return timeline, nil
}

// fromCache returns a cached series or nil. Cache errors are treated as
// misses; the database remains the source of truth.
func (s *DataService) fromCache(ctx context.Context, code string) *model.CO2Series {
	if s.cache == nil {
		return nil
	}
	series, err := s.cache.GetSeries(ctx, code)
	if err != nil || series == nil {
		s.metrics.IncSeriesCacheMiss()
		return nil
	}
	s.metrics.IncSeriesCacheHit()
	return series
}

func (s *DataService) toCache(ctx context.Context, code string, series *model.CO2Series) {
	if s.cache == nil {
		return
	}
	// Best effort: a failed cache write must not fail the request.
	_ = s.cache.SetSeries(ctx, code, series, s.cacheTTL)
}
