package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jredh-dev/foodrescue/internal/models"
	"github.com/jredh-dev/foodrescue/internal/token"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// UserContextKey stores the authenticated user in request context.
	UserContextKey contextKey = "user"
)

// AuthMiddleware requires a valid bearer token.
func AuthMiddleware(tokens *token.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				jsonError(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			claims, err := tokens.ValidateToken(raw)
			if err != nil {
				slog.Debug("token rejected", "error", err)
				jsonError(w, "invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, claims.User())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole allows only users with one of roles through.
// MUST be used after AuthMiddleware so the user is already in context.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUserFromContext(r.Context())
			if !ok || user == nil {
				jsonError(w, "forbidden", http.StatusForbidden)
				return
			}
			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			jsonError(w, "forbidden", http.StatusForbidden)
		})
	}
}

// GetUserFromContext extracts the authenticated user from request context.
func GetUserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	return user, ok
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, tok, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tok) == "" {
		return "", false
	}
	return strings.TrimSpace(tok), true
}
