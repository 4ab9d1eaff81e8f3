// Package main is the entrypoint for the EcoLens API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ecolens/ecolens/internal/auth"
	"github.com/ecolens/ecolens/internal/cache"
	"github.com/ecolens/ecolens/internal/config"
	"github.com/ecolens/ecolens/internal/handler"
	"github.com/ecolens/ecolens/internal/metrics"
	"github.com/ecolens/ecolens/internal/middleware"
	"github.com/ecolens/ecolens/internal/model"
	"github.com/ecolens/ecolens/internal/repository"
	"github.com/ecolens/ecolens/internal/server"
	"github.com/ecolens/ecolens/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret: []byte(cfg.JWTSecret),
		Expiry: cfg.JWTExpiry,
	})
	if err != nil {
		logger.Error("failed to initialize token service", "error", err)
		os.Exit(1)
	}

	recorder := metrics.NewNoop()
	authService := service.NewAuthService(repo, tokens, recorder)
	dataService := service.NewDataService(repo, cacheClient, cfg.DataCacheTTL, recorder)
	insightService := service.NewInsightService(repo, recorder)

	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	authHandler := handler.NewAuthHandler(authService, logger)
	userHandler := handler.NewUserHandler(authService, logger)
	adminHandler := handler.NewAdminHandler(authService, logger)
	dataHandler := handler.NewDataHandler(dataService, logger)
	insightHandler := handler.NewInsightHandler(insightService, logger)

	r := setupRouter(routerDeps{
		health:  healthHandler,
		auth:    authHandler,
		user:    userHandler,
		admin:   adminHandler,
		data:    dataHandler,
		insight: insightHandler,
		tokens:  tokens,
		repo:    repo,
		cache:   cacheClient,
		metrics: recorder,
		cfg:     cfg,
		logger:  logger,
	})

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type routerDeps struct {
	health  *handler.HealthHandler
	auth    *handler.AuthHandler
	user    *handler.UserHandler
	admin   *handler.AdminHandler
	data    *handler.DataHandler
	insight *handler.InsightHandler
	tokens  *auth.TokenService
	repo    *repository.Repository
	cache   *cache.Cache
	metrics metrics.Recorder
	cfg     *config.Config
	logger  *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(d routerDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.logger))
	r.Use(middleware.Recoverer(d.logger))
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment: d.cfg.IsDevelopment(),
	}))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = d.cfg.GetCORSAllowedOrigins()
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.MaxBodySize(d.cfg.MaxRequestBodySize))

	authCfg := middleware.AuthConfig{
		Logger:  d.logger,
		Tokens:  d.tokens,
		Users:   d.repo,
		Metrics: d.metrics,
	}
	rateLimitCfg := middleware.RateLimitConfig{
		Logger:            d.logger,
		Cache:             d.cache,
		Enabled:           d.cfg.RateLimitEnabled,
		RequestsPerMinute: d.cfg.RateLimitRPM,
		Burst:             d.cfg.RateLimitBurst,
	}

	// Health endpoints, no auth.
	r.Get("/health", d.health.Health)
	r.Get("/healthz", d.health.Healthz)
	r.Get("/readyz", d.health.Readyz)

	// Account creation and login, throttled per IP.
	r.Route("/api/auth", func(r chi.Router) {
		r.Use(middleware.RateLimitIP(rateLimitCfg))
		r.Post("/register", d.auth.Register)
		r.Post("/login", d.auth.Login)
	})

	// Current user, token required.
	r.Route("/api/user", func(r chi.Router) {
		r.Use(middleware.Authenticate(authCfg))
		r.Use(middleware.RateLimitUser(rateLimitCfg))
		r.Get("/me", d.user.Me)
		r.Put("/me", d.user.UpdateMe)
	})

	// Admin surface.
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Authenticate(authCfg))
		r.Use(middleware.RequireRole(model.RoleAdmin))
		r.Use(middleware.RateLimitUser(rateLimitCfg))
		r.Get("/users", d.admin.ListUsers)
		r.Patch("/users/{id}/active", d.admin.SetUserActive)
	})

	// Public emission data.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitIP(rateLimitCfg))
		r.Get("/api/data/co2/global", d.data.GlobalCO2)
		r.Get("/api/data/co2/country/{code}", d.data.CountryCO2)
		r.Get("/api/visualization/timeline/{code}", d.data.Timeline)
	})

	// Insight endpoints work anonymously but attribute results when a
	// valid token is present.
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuth(authCfg))
		r.Use(middleware.RateLimitUser(rateLimitCfg))
		r.Post("/api/cv/analyze", d.insight.Analyze)
		r.Post("/api/simulation/run", d.insight.RunSimulation)
		r.Get("/api/simulation/scenarios", d.insight.Scenarios)
		r.Post("/api/narrative/generate", d.insight.GenerateNarrative)
		r.Get("/api/narrative/templates", d.insight.NarrativeTemplates)
	})

	// Analysis history is per-account.
	r.With(middleware.Authenticate(authCfg)).Get("/api/cv/history", d.insight.History)

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
