package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"social-go/internal/auth"
	"social-go/internal/config"
)

// contextKey is a private type for context values to avoid key collisions.
type contextKey string

// UserIDKey stores the authenticated user's ID in the request context.
const UserIDKey contextKey = "userID"

// FullNameKey stores the authenticated user's display name in the request context.
const FullNameKey contextKey = "fullName"

// AuthMiddleware validates the Bearer token on each request and stores the
// caller's identity in the request context.
func AuthMiddleware(next http.Handler, authCfg config.AuthConfig, blacklist auth.TokenBlacklist) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeAuthError(w, "missing authorization token")
			return
		}

		headerParts := strings.Split(authHeader, " ")
		if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
			writeAuthError(w, "authorization header must be: Bearer {token}")
			return
		}

		claims, err := auth.ValidateToken(r.Context(), headerParts[1], authCfg.JWTSecretKey, blacklist)
		if err != nil {
			writeAuthError(w, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, FullNameKey, claims.FullName)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserIDFromContext returns the authenticated user ID, if any.
func GetUserIDFromContext(ctx context.Context) (uint, bool) {
	userID, ok := ctx.Value(UserIDKey).(uint)
	return userID, ok
}

// GetFullNameFromContext returns the authenticated user's display name, if any.
func GetFullNameFromContext(ctx context.Context) (string, bool) {
	fullName, ok := ctx.Value(FullNameKey).(string)
	return fullName, ok
}

func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
