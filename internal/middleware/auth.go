package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ecolens/ecolens/internal/auth"
	"github.com/ecolens/ecolens/internal/metrics"
	"github.com/ecolens/ecolens/internal/model"
	"github.com/ecolens/ecolens/internal/repository"
)

const notAuthorizedMessage = "Not authorized to access this route"

// UserResolver looks up the account behind a verified token.
// *repository.Repository satisfies it.
type UserResolver interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger  *slog.Logger
	Tokens  *auth.TokenService
	Users   UserResolver
	Metrics metrics.Recorder
}

// Authenticate returns middleware that requires a valid bearer token.
// The token's claims are never trusted on their own: the account is
// re-resolved from the store on every request so deletions and
// deactivations take effect immediately, not at token expiry.
func Authenticate(cfg AuthConfig) func(http.Handler) http.Handler {
	rec := cfg.Metrics
	if rec == nil {
		rec = metrics.NewNoop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, status, message, reason := resolveIdentity(r, cfg)
			if identity == nil {
				rec.IncTokenRejected(reason)
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", reason),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeError(w, status, message)
				return
			}

			ctx := auth.ContextWithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth returns middleware that attaches an identity when a valid
// bearer token is present and silently continues without one otherwise.
func OptionalAuth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, _, _, _ := resolveIdentity(r, cfg)
			if identity != nil {
				r = r.WithContext(auth.ContextWithIdentity(r.Context(), identity))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole returns middleware that enforces role requirements.
// Must be applied after Authenticate. Having ANY listed role is sufficient.
func RequireRole(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := auth.IdentityFromContext(r.Context())
			if identity == nil {
				writeError(w, http.StatusUnauthorized, notAuthorizedMessage)
				return
			}

			if !identity.HasRole(roles...) {
				writeError(w, http.StatusForbidden,
					fmt.Sprintf("User role '%s' is not authorized to access this route", identity.Role))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// resolveIdentity runs the full token pipeline: extract, verify, re-resolve.
// Returns a nil identity plus the response status, message and a short
// metric reason when the request must be rejected.
func resolveIdentity(r *http.Request, cfg AuthConfig) (*model.Identity, int, string, string) {
	tokenString := extractBearerToken(r)
	if tokenString == "" {
		return nil, http.StatusUnauthorized, notAuthorizedMessage, "missing"
	}

	claims, err := cfg.Tokens.Verify(tokenString)
	if err != nil {
		reason := "invalid"
		if errors.Is(err, auth.ErrExpiredToken) {
			reason = "expired"
		}
		return nil, http.StatusUnauthorized, notAuthorizedMessage, reason
	}

	user, err := cfg.Users.GetUserByID(r.Context(), claims.UserID())
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, http.StatusUnauthorized, "User no longer exists", "user_gone"
		}
		cfg.Logger.Error("database error during auth",
			slog.String("error", err.Error()),
			slog.String("request_id", GetRequestID(r.Context())),
		)
		return nil, http.StatusInternalServerError, "Server Error", "store_error"
	}

	if !user.IsActive {
		return nil, http.StatusUnauthorized, "Account is deactivated", "deactivated"
	}

	// The store is authoritative for email and role, not the claims.
	return &model.Identity{UserID: user.ID, Email: user.Email, Role: user.Role}, 0, "", ""
}

// extractBearerToken pulls the token out of the Authorization header.
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

// writeError writes a failure in the standard error envelope.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, `{"success":false,"error":{"message":%q}}`, message)
}
