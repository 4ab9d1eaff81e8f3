package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ecolens/ecolens/internal/auth"
	"github.com/ecolens/ecolens/internal/metrics"
	"github.com/ecolens/ecolens/internal/model"
	"github.com/ecolens/ecolens/internal/repository"
	"github.com/ecolens/ecolens/internal/service"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// memUserStore is a minimal in-memory user store for handler tests.
type memUserStore struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[string]*model.User)}
}

func (m *memUserStore) CreateUser(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrEmailExists
		}
	}
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *memUserStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		clone := *u
		clone.PasswordHash = ""
		return &clone, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *memUserStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := m.GetUserByEmailWithPassword(ctx, email)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = ""
	return u, nil
}

func (m *memUserStore) GetUserByEmailWithPassword(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == strings.ToLower(email) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memUserStore) UpdateUserProfile(_ context.Context, id, name string, prefs model.Preferences) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	u.Name = name
	u.Preferences = prefs
	clone := *u
	clone.PasswordHash = ""
	return &clone, nil
}

func (m *memUserStore) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		u.LastLogin = &at
		return nil
	}
	return repository.ErrUserNotFound
}

func (m *memUserStore) SetUserActive(_ context.Context, id string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		u.IsActive = active
		return nil
	}
	return repository.ErrUserNotFound
}

func (m *memUserStore) ListUsers(_ context.Context, limit, offset int) ([]*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var users []*model.User
	for _, u := range m.users {
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

// memCO2Store serves canned series.
type memCO2Store struct {
	series map[string]*model.CO2Series
}

func (m *memCO2Store) GetGlobalSeries(_ context.Context) (*model.CO2Series, error) {
	if s, ok := m.series[model.GlobalCode]; ok {
		return s, nil
	}
	return &model.CO2Series{}, nil
}

func (m *memCO2Store) GetCountrySeries(_ context.Context, code string) (*model.CO2Series, error) {
	if s, ok := m.series[strings.ToUpper(code)]; ok {
		return s, nil
	}
	return nil, repository.ErrNoSeriesData
}

// memInsightStore records inserted rows.
type memInsightStore struct {
	mu          sync.Mutex
	analyses    []*model.ImageAnalysis
	simulations []*model.Simulation
}

func (m *memInsightStore) InsertAnalysis(_ context.Context, a *model.ImageAnalysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.analyses = append(m.analyses, a)
	return nil
}

func (m *memInsightStore) InsertSimulation(_ context.Context, s *model.Simulation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.simulations = append(m.simulations, s)
	return nil
}

func (m *memInsightStore) ListAnalysesByOwner(_ context.Context, ownerID string, limit int) ([]*model.ImageAnalysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.ImageAnalysis
	for i := len(m.analyses) - 1; i >= 0 && len(out) < limit; i-- {
		if m.analyses[i].OwnerID == ownerID {
			out = append(out, m.analyses[i])
		}
	}
	return out, nil
}

func newTestTokens(t *testing.T) *auth.TokenService {
	t.Helper()
	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret: []byte("handler-test-secret"),
		Expiry: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return tokens
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
}

func postJSON(t *testing.T, handler http.HandlerFunc, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestRegisterEndpoint(t *testing.T) {
	store := newMemUserStore()
	svc := service.NewAuthService(store, newTestTokens(t), metrics.NewNoop())
	h := NewAuthHandler(svc, testLogger)

	rec := postJSON(t, h.Register, "/api/auth/register", map[string]string{
		"name":     "Test User",
		"email":    "test@example.com",
		"password": "Passw0rd",
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var resp registerResponse
	decodeBody(t, rec, &resp)
	if !resp.Success {
		t.Error("expected success=true")
	}
	if resp.UserID == "" || resp.Token == "" {
		t.Errorf("incomplete response: %+v", resp)
	}
}

func TestRegisterEndpoint_DuplicateEmail(t *testing.T) {
	store := newMemUserStore()
	svc := service.NewAuthService(store, newTestTokens(t), metrics.NewNoop())
	h := NewAuthHandler(svc, testLogger)

	body := map[string]string{"name": "Test User", "email": "dup@example.com", "password": "Passw0rd"}
	postJSON(t, h.Register, "/api/auth/register", body)
	rec := postJSON(t, h.Register, "/api/auth/register", body)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var resp errorResponse
	decodeBody(t, rec, &resp)
	if resp.Success {
		t.Error("expected success=false")
	}
	if resp.Error.Message != "User already exists with this email" {
		t.Errorf("message = %q", resp.Error.Message)
	}
}

func TestLoginEndpoint(t *testing.T) {
	store := newMemUserStore()
	svc := service.NewAuthService(store, newTestTokens(t), metrics.NewNoop())
	h := NewAuthHandler(svc, testLogger)

	postJSON(t, h.Register, "/api/auth/register", map[string]string{
		"name": "Test User", "email": "login@example.com", "password": "Passw0rd",
	})

	testCases := []struct {
		name        string
		body        map[string]string
		wantStatus  int
		wantMessage string
	}{
		{"success", map[string]string{"email": "login@example.com", "password": "Passw0rd"}, http.StatusOK, ""},
		{"missing fields", map[string]string{"email": "login@example.com"}, http.StatusBadRequest, "Please provide an email and password"},
		{"unknown email", map[string]string{"email": "nobody@example.com", "password": "Passw0rd"}, http.StatusUnauthorized, "Invalid credentials"},
		{"wrong password", map[string]string{"email": "login@example.com", "password": "Wrong0pw"}, http.StatusUnauthorized, "Invalid credentials"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postJSON(t, h.Login, "/api/auth/login", tc.body)
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tc.wantStatus, rec.Body.String())
			}
			if tc.wantMessage != "" {
				var resp errorResponse
				decodeBody(t, rec, &resp)
				if resp.Error.Message != tc.wantMessage {
					t.Errorf("message = %q, want %q", resp.Error.Message, tc.wantMessage)
				}
			}
		})
	}
}

func TestMeEndpoints(t *testing.T) {
	store := newMemUserStore()
	svc := service.NewAuthService(store, newTestTokens(t), metrics.NewNoop())
	h := NewUserHandler(svc, testLogger)

	out, err := svc.Register(context.Background(), service.RegisterInput{
		Name: "Test User", Email: "me@example.com", Password: "Passw0rd",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	identity := &model.Identity{UserID: out.UserID, Email: "me@example.com", Role: model.RoleUser}

	// GET /api/user/me
	req := httptest.NewRequest(http.MethodGet, "/api/user/me", nil)
	req = req.WithContext(auth.ContextWithIdentity(req.Context(), identity))
	rec := httptest.NewRecorder()
	h.Me(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var prof profileResponse
	decodeBody(t, rec, &prof)
	if prof.User.Email != "me@example.com" {
		t.Errorf("email = %q", prof.User.Email)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Error("profile response must not mention password")
	}

	// PUT /api/user/me merges preferences.
	payload := []byte(`{"preferences":{"defaultCountry":"PK"}}`)
	req = httptest.NewRequest(http.MethodPut, "/api/user/me", bytes.NewReader(payload))
	req = req.WithContext(auth.ContextWithIdentity(req.Context(), identity))
	rec = httptest.NewRecorder()
	h.UpdateMe(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	decodeBody(t, rec, &prof)
	if prof.User.Preferences.DefaultCountry != "PK" {
		t.Errorf("defaultCountry = %q, want PK", prof.User.Preferences.DefaultCountry)
	}

	// Without identity both endpoints refuse.
	rec = httptest.NewRecorder()
	h.Me(rec, httptest.NewRequest(http.MethodGet, "/api/user/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated Me status = %d, want 401", rec.Code)
	}
}

func TestDataEndpoints(t *testing.T) {
	store := &memCO2Store{series: map[string]*model.CO2Series{
		"IN": {Country: "India", Years: []int{2000, 2020}, Emissions: []float64{900, 2400}},
	}}
	svc := service.NewDataService(store, nil, time.Hour, metrics.NewNoop())
	h := NewDataHandler(svc, testLogger)

	r := chi.NewRouter()
	r.Get("/api/data/co2/global", h.GlobalCO2)
	r.Get("/api/data/co2/country/{code}", h.CountryCO2)
	r.Get("/api/visualization/timeline/{code}", h.Timeline)

	testCases := []struct {
		name       string
		target     string
		wantStatus int
		wantBody   string
	}{
		{"global fallback", "/api/data/co2/global", http.StatusOK, `"success":true`},
		{"known country", "/api/data/co2/country/IN", http.StatusOK, "India"},
		{"invalid code", "/api/data/co2/country/1234", http.StatusBadRequest, "Invalid country code format"},
		{"unknown country", "/api/data/co2/country/zz", http.StatusNotFound, "No CO2 data available for country code: ZZ"},
		{"timeline", "/api/visualization/timeline/IN", http.StatusOK, `"timeline"`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.target, nil))

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tc.wantStatus, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), tc.wantBody) {
				t.Errorf("body %q does not contain %q", rec.Body.String(), tc.wantBody)
			}
		})
	}
}

func TestInsightEndpoints(t *testing.T) {
	store := &memInsightStore{}
	svc := service.NewInsightService(store, metrics.NewNoop())
	h := NewInsightHandler(svc, testLogger)

	rec := postJSON(t, h.Analyze, "/api/cv/analyze", map[string]string{"imageUrl": "https://example.com/img.jpg"})
	if rec.Code != http.StatusOK {
		t.Fatalf("analyze status = %d: %s", rec.Code, rec.Body.String())
	}
	var analyze analyzeResponse
	decodeBody(t, rec, &analyze)
	if analyze.Data.EstimatedImpact != "High" {
		t.Errorf("estimatedImpact = %q", analyze.Data.EstimatedImpact)
	}

	rec = postJSON(t, h.Analyze, "/api/cv/analyze", map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing image status = %d, want 400", rec.Code)
	}

	rec = postJSON(t, h.RunSimulation, "/api/simulation/run", map[string]any{"yearsAhead": 10})
	if rec.Code != http.StatusOK {
		t.Fatalf("simulation status = %d: %s", rec.Code, rec.Body.String())
	}
	var sim simulationResponse
	decodeBody(t, rec, &sim)
	if sim.Data.Country != "Pakistan" || sim.Data.Confidence != 0.85 {
		t.Errorf("simulation data = %+v", sim.Data)
	}

	rec = postJSON(t, h.RunSimulation, "/api/simulation/run", map[string]any{"yearsAhead": 99})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid yearsAhead status = %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Scenarios(rec, httptest.NewRequest(http.MethodGet, "/api/simulation/scenarios", nil))
	if !strings.Contains(rec.Body.String(), "current_path") {
		t.Errorf("scenarios body = %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.GenerateNarrative(rec, httptest.NewRequest(http.MethodPost, "/api/narrative/generate", nil))
	if !strings.Contains(rec.Body.String(), "carbon footprint") {
		t.Errorf("narrative body = %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.NarrativeTemplates(rec, httptest.NewRequest(http.MethodGet, "/api/narrative/templates", nil))
	if !strings.Contains(rec.Body.String(), "personal_impact") {
		t.Errorf("templates body = %s", rec.Body.String())
	}
}

func TestAdminEndpoints(t *testing.T) {
	store := newMemUserStore()
	svc := service.NewAuthService(store, newTestTokens(t), metrics.NewNoop())
	h := NewAdminHandler(svc, testLogger)

	out, err := svc.Register(context.Background(), service.RegisterInput{
		Name: "Test User", Email: "target@example.com", Password: "Passw0rd",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	r := chi.NewRouter()
	r.Get("/api/admin/users", h.ListUsers)
	r.Patch("/api/admin/users/{id}/active", h.SetUserActive)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/users", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d: %s", rec.Code, rec.Body.String())
	}
	var list listUsersResponse
	decodeBody(t, rec, &list)
	if list.Count != 1 {
		t.Errorf("count = %d, want 1", list.Count)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/admin/users/"+out.UserID+"/active", strings.NewReader(`{"isActive":false}`))
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("patch status = %d: %s", rec.Code, rec.Body.String())
	}

	u, err := store.GetUserByID(context.Background(), out.UserID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if u.IsActive {
		t.Error("expected user deactivated")
	}

	// Missing body flag and missing target user.
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/api/admin/users/"+out.UserID+"/active", strings.NewReader(`{}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing flag status = %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/api/admin/users/ghost/active", strings.NewReader(`{"isActive":true}`)))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing user status = %d, want 404", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	h := NewHealthHandler(nil, nil)

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "timestamp") {
		t.Errorf("health body = %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("readyz status = %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "not configured") {
		t.Errorf("readyz body = %s", rec.Body.String())
	}
}

func TestNotFoundEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	var resp errorResponse
	decodeBody(t, rec, &resp)
	if resp.Success || resp.Error.Message == "" {
		t.Errorf("envelope = %+v", resp)
	}
}
