//go:build integration

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ecolens/ecolens/internal/model"
	"github.com/ecolens/ecolens/internal/testutil"
)

func newCacheTestEnv(t *testing.T) (context.Context, *Cache) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	redisURL := testutil.RequireEnv(t, "REDIS_URL")

	c, err := New(ctx, redisURL)
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() {
		_ = c.Close()
	})

	if err := testutil.FlushRedis(ctx, c.Client()); err != nil {
		t.Fatalf("flush redis: %v", err)
	}

	return ctx, c
}

func TestIntegrationSeriesCache_RoundTrip(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	series := &model.CO2Series{
		Country:   "Pakistan",
		Years:     []int{2000, 2005},
		Emissions: []float64{100, 120},
	}

	if err := c.SetSeries(ctx, "PK", series, time.Minute); err != nil {
		t.Fatalf("SetSeries failed: %v", err)
	}

	got, err := c.GetSeries(ctx, "PK")
	if err != nil {
		t.Fatalf("GetSeries failed: %v", err)
	}
	if got.Country != "Pakistan" || len(got.Years) != 2 {
		t.Errorf("series = %+v", got)
	}

	if err := c.InvalidateSeries(ctx, "PK"); err != nil {
		t.Fatalf("InvalidateSeries failed: %v", err)
	}
	if _, err := c.GetSeries(ctx, "PK"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss after invalidate, got: %v", err)
	}
}

func TestIntegrationSeriesCache_Miss(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	if _, err := c.GetSeries(ctx, "ZZ"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss, got: %v", err)
	}
}

func TestIntegrationRateLimit_Bucket(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	// Burst of 2 at 60 rpm: two requests pass, the third is refused.
	var last *RateLimitResult
	for i := 0; i < 3; i++ {
		result, err := c.CheckUserRateLimit(ctx, "user-1", 60, 2)
		if err != nil {
			t.Fatalf("CheckUserRateLimit failed: %v", err)
		}
		last = result
		if i < 2 && !result.Allowed {
			t.Fatalf("request %d unexpectedly limited", i)
		}
	}

	if last.Allowed {
		t.Error("third request should be limited")
	}
	if last.RetryAfter <= 0 {
		t.Errorf("RetryAfter = %v, want positive", last.RetryAfter)
	}

	// A different bucket is unaffected.
	result, err := c.CheckIPRateLimit(ctx, "203.0.113.9", 60, 2)
	if err != nil {
		t.Fatalf("CheckIPRateLimit failed: %v", err)
	}
	if !result.Allowed {
		t.Error("fresh IP bucket should allow the request")
	}
}
