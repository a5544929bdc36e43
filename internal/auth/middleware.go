package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/redmonkez12/placereviews/internal/httputil"
	"github.com/redmonkez12/placereviews/internal/logging"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const IdentityContextKey ContextKey = "identity"

// IdentityResolver turns a bearer token into a verified identity.
type IdentityResolver interface {
	ResolveCurrentUser(ctx context.Context, token string) (*Identity, error)
}

// Middleware handles authentication for protected routes
type Middleware struct {
	resolver IdentityResolver
}

func NewMiddleware(resolver IdentityResolver) *Middleware {
	return &Middleware{resolver: resolver}
}

// RequireAuth rejects requests without a valid "Authorization: Bearer" token
// and stores the caller's Identity in the request context.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := logging.GetLoggerFromContext(r.Context())

		token, ok, present := bearerToken(r)
		if !present {
			unauthorized(w, "missing authentication", httputil.CodeMissingAuth)
			return
		}
		if !ok {
			unauthorized(w, "invalid authorization header format", httputil.CodeInvalidAuthHeader)
			return
		}

		identity, err := m.resolver.ResolveCurrentUser(r.Context(), token)
		if err != nil {
			logger.Warn("rejected session token", "error", err.Error())
			unauthorized(w, "invalid or expired token", httputil.CodeInvalidToken)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

// bearerToken extracts the token from the Authorization header. present is
// false when there is no header at all; ok is false when it is not a bearer credential.
func bearerToken(r *http.Request) (token string, ok bool, present bool) {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if authHeader == "" {
		return "", false, false
	}

	scheme, value, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false, true
	}

	value = strings.TrimSpace(value)
	if value == "" || strings.ContainsAny(value, " \t") {
		return "", false, true
	}
	return value, true, true
}

func unauthorized(w http.ResponseWriter, message, code string) {
	httputil.WWWAuthenticateBearer(w)
	httputil.RespondErrorWithCode(w, message, code, http.StatusUnauthorized)
}

// WithIdentity returns a copy of ctx carrying identity.
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, IdentityContextKey, identity)
}

// GetIdentityFromContext extracts the authenticated identity from the request context
func GetIdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(IdentityContextKey).(*Identity)
	return identity, ok && identity != nil
}
