package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/arcadebot/internal/api/apierr"
	"github.com/mcoot/arcadebot/internal/services/auth"
)

type contextKey string

const adminContextKey contextKey = "admin"

// AdminAuth requires a valid admin bearer token
func AdminAuth(tokens *auth.AdminTokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !tokens.Enabled() {
				apierr.WriteError(w, auth.ErrAdminNotConfigured)
				return
			}

			token := extractBearer(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			claims, err := tokens.Verify(token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), adminContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearer extracts the bearer token from the Authorization header
func extractBearer(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

// GetAdmin returns the verified admin claims from the request context
func GetAdmin(ctx context.Context) *auth.AdminClaims {
	claims, _ := ctx.Value(adminContextKey).(*auth.AdminClaims)
	return claims
}
