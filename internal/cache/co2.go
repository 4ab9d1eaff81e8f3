package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ecolens/ecolens/internal/model"
)

// Cache key prefixes and TTLs.
const (
	co2SeriesPrefix = "co2:series:"

	// DefaultSeriesTTL is the TTL for cached emission series. The dataset
	// changes at most daily, so an hour of staleness is acceptable.
	DefaultSeriesTTL = time.Hour
)

// ErrCacheMiss indicates the key was not found in cache.
var ErrCacheMiss = errors.New("cache miss")

// GetSeries retrieves a cached CO2 series by country code.
// Returns ErrCacheMiss if not found or the entry is corrupted.
func (c *Cache) GetSeries(ctx context.Context, countryCode string) (*model.CO2Series, error) {
	key := co2SeriesPrefix + strings.ToUpper(countryCode)

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, ErrCacheMiss
	}

	var series model.CO2Series
	if err := json.Unmarshal(data, &series); err != nil {
		// Corrupted entry - drop it and treat as miss
		_ = c.client.Del(ctx, key).Err()
		return nil, ErrCacheMiss
	}

	return &series, nil
}

// SetSeries caches a CO2 series for a country code.
func (c *Cache) SetSeries(ctx context.Context, countryCode string, series *model.CO2Series, ttl time.Duration) error {
	key := co2SeriesPrefix + strings.ToUpper(countryCode)

	data, err := json.Marshal(series)
	if err != nil {
		return fmt.Errorf("marshal CO2 series: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultSeriesTTL
	}

	return c.client.Set(ctx, key, data, ttl).Err()
}

// InvalidateSeries removes a cached series, e.g. after a reseed.
func (c *Cache) InvalidateSeries(ctx context.Context, countryCode string) error {
	return c.client.Del(ctx, co2SeriesPrefix+strings.ToUpper(countryCode)).Err()
}
