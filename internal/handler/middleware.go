package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/boddenberg/buyer-portal-bff-go/internal/domain"
	"github.com/boddenberg/buyer-portal-bff-go/internal/service"
)

type contextKey string

const identityKey contextKey = "identity"

// IdentityFrom extracts the authenticated caller from the request
// context. Only set by RequireAuth.
func IdentityFrom(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(identityKey).(domain.Identity)
	return id, ok
}

// RequireAuth authenticates the request and enforces the idle timeout.
// The access token is accepted from the Authorization header only —
// cookies and query strings are not token transports for access
// tokens.
func RequireAuth(auth *service.AuthService, sessions *service.SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeError(w, http.StatusUnauthorized, domain.CodeTokenMissing, "authorization header required")
				return
			}
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeError(w, http.StatusUnauthorized, domain.CodeTokenInvalid, "authorization header must be 'Bearer <token>'")
				return
			}

			identity, err := auth.ValidateAccessToken(token)
			if err != nil {
				handleServiceError(w, nil, err)
				return
			}

			// Idle check runs after signature validation: a valid
			// token from an idle-expired session is still a 401.
			if err := sessions.CheckActivity(identity.UserID); err != nil {
				handleServiceError(w, nil, err)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, *identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireCapability gates a route group on one capability from the
// static role table. 403 responses name the missing capability so the
// SPA can hide the affected controls.
func RequireCapability(cap domain.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFrom(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, domain.CodeTokenMissing, "authentication required")
				return
			}
			if !domain.HasCapability(identity.Role, cap) {
				writeJSON(w, http.StatusForbidden, errorResponse{
					Error:    "insufficient role",
					Code:     domain.CodeCapabilityRequired,
					Required: []string{string(cap)},
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
