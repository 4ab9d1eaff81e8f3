package auth

import (
	"context"

	"github.com/ecolens/ecolens/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// identityContextKey is the context key for the resolved Identity.
	identityContextKey contextKey = "identity"
)

// ContextWithIdentity adds a resolved Identity to the context.
func ContextWithIdentity(ctx context.Context, identity *model.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// IdentityFromContext retrieves the Identity from the context.
// Returns nil when the request is unauthenticated (optional-auth routes).
func IdentityFromContext(ctx context.Context) *model.Identity {
	identity, ok := ctx.Value(identityContextKey).(*model.Identity)
	if !ok {
		return nil
	}
	return identity
}

// MustIdentityFromContext retrieves the Identity from the context.
// Panics if not present (use only behind the Authenticate middleware).
func MustIdentityFromContext(ctx context.Context) *model.Identity {
	identity := IdentityFromContext(ctx)
	if identity == nil {
		panic("identity not found - ensure auth middleware is applied")
	}
	return identity
}

// UserIDFromContext is a convenience accessor for the authenticated user ID.
// Returns empty string if not authenticated.
func UserIDFromContext(ctx context.Context) string {
	identity := IdentityFromContext(ctx)
	if identity == nil {
		return ""
	}
	return identity.UserID
}
