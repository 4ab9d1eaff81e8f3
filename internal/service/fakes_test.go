package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ecolens/ecolens/internal/cache"
	"github.com/ecolens/ecolens/internal/model"
	"github.com/ecolens/ecolens/internal/repository"
)

// fakeUserStore is an in-memory UserStore for unit tests.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*model.User // by ID
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*model.User)}
}

func (f *fakeUserStore) CreateUser(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return repository.ErrEmailExists
		}
	}
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	clone := *u
	clone.PasswordHash = ""
	return &clone, nil
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	u, err := f.GetUserByEmailWithPassword(context.Background(), email)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = ""
	return u, nil
}

func (f *fakeUserStore) GetUserByEmailWithPassword(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == strings.ToLower(email) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUserStore) UpdateUserProfile(_ context.Context, id, name string, prefs model.Preferences) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	u.Name = name
	u.Preferences = prefs
	clone := *u
	clone.PasswordHash = ""
	return &clone, nil
}

func (f *fakeUserStore) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.LastLogin = &at
	return nil
}

func (f *fakeUserStore) SetUserActive(_ context.Context, id string, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.IsActive = active
	return nil
}

func (f *fakeUserStore) ListUsers(_ context.Context, limit, offset int) ([]*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var users []*model.User
	for _, u := range f.users {
		clone := *u
		clone.PasswordHash = ""
		users = append(users, &clone)
	}
	if offset >= len(users) {
		return nil, nil
	}
	users = users[offset:]
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

// deleteUser simulates a hard account removal for re-resolution tests.
func (f *fakeUserStore) deleteUser(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
}

// fakeCO2Store serves canned series keyed by country code.
type fakeCO2Store struct {
	series map[string]*model.CO2Series
	calls  int
}

func (f *fakeCO2Store) GetGlobalSeries(_ context.Context) (*model.CO2Series, error) {
	f.calls++
	if s, ok := f.series[model.GlobalCode]; ok {
		return s, nil
	}
	return &model.CO2Series{}, nil
}

func (f *fakeCO2Store) GetCountrySeries(_ context.Context, code string) (*model.CO2Series, error) {
	f.calls++
	if s, ok := f.series[strings.ToUpper(code)]; ok {
		return s, nil
	}
	return nil, repository.ErrNoSeriesData
}

// fakeSeriesCache is an in-memory SeriesCache.
type fakeSeriesCache struct {
	mu      sync.Mutex
	entries map[string]*model.CO2Series
}

func newFakeSeriesCache() *fakeSeriesCache {
	return &fakeSeriesCache{entries: make(map[string]*model.CO2Series)}
}

func (f *fakeSeriesCache) GetSeries(_ context.Context, code string) (*model.CO2Series, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.entries[strings.ToUpper(code)]; ok {
		return s, nil
	}
	return nil, cache.ErrCacheMiss
}

func (f *fakeSeriesCache) SetSeries(_ context.Context, code string, series *model.CO2Series, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[strings.ToUpper(code)] = series
	return nil
}

// fakeInsightStore records inserts in memory.
type fakeInsightStore struct {
	mu          sync.Mutex
	analyses    []*model.ImageAnalysis
	simulations []*model.Simulation
	failInserts bool
}

func (f *fakeInsightStore) InsertAnalysis(_ context.Context, a *model.ImageAnalysis) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failInserts {
		return errInsertFailed
	}
	f.analyses = append(f.analyses, a)
	return nil
}

func (f *fakeInsightStore) InsertSimulation(_ context.Context, s *model.Simulation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failInserts {
		return errInsertFailed
	}
	f.simulations = append(f.simulations, s)
	return nil
}

func (f *fakeInsightStore) ListAnalysesByOwner(_ context.Context, ownerID string, limit int) ([]*model.ImageAnalysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.ImageAnalysis
	for i := len(f.analyses) - 1; i >= 0 && len(out) < limit; i-- {
		if f.analyses[i].OwnerID == ownerID {
			out = append(out, f.analyses[i])
		}
	}
	return out, nil
}
