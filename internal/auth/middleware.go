// Package auth provides JWT-based authentication middleware shared by the
// HTTP services.
package auth

import (
	"net/http"
	"strings"

	"github.com/tokotrack/tokotrack-backend/internal/auth/jwt"
	"github.com/tokotrack/tokotrack-backend/pkg/errors"
	"github.com/tokotrack/tokotrack-backend/pkg/httputil"
)

// RequireAuth validates the bearer token and adds user context.
// The raw token is also kept in the context so downstream clients can
// forward it on outbound calls.
func RequireAuth(manager *jwt.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				httputil.ErrorLocalized(w, r, errors.Unauthorized("missing authorization header"))
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				httputil.ErrorLocalized(w, r, errors.Unauthorized("invalid authorization header format"))
				return
			}

			claims, err := manager.ValidateAccessToken(parts[1])
			if err != nil {
				httputil.ErrorLocalized(w, r, err)
				return
			}

			ctx := httputil.WithUserContext(r.Context(), claims.UserID, claims.Email, claims.Role)
			ctx = httputil.WithBearerToken(ctx, parts[1])

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole restricts a route to users with the given role.
// Must be mounted after RequireAuth.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if httputil.GetUserRole(r.Context()) != role {
				httputil.ErrorLocalized(w, r, errors.Forbidden("insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
