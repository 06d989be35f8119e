package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"traceport/internal/auth"
)

// TokenValidator defines the interface for validating bearer tokens
type TokenValidator interface {
	ValidateToken(tokenString string) (*auth.Claims, error)
}

// Context keys for storing authenticated caller information
type contextKeyUserID struct{}
type contextKeyOrganizationID struct{}

var (
	ContextKeyUserID         = contextKeyUserID{}
	ContextKeyOrganizationID = contextKeyOrganizationID{}
)

// GetUserID retrieves the authenticated user ID from the context
func GetUserID(ctx context.Context) string {
	userID, ok := ctx.Value(ContextKeyUserID).(string)
	if !ok {
		return ""
	}
	return userID
}

// GetOrganizationID retrieves the caller's organization ID from the context
func GetOrganizationID(ctx context.Context) string {
	organizationID, ok := ctx.Value(ContextKeyOrganizationID).(string)
	if !ok {
		return ""
	}
	return organizationID
}

// WithIdentity injects caller identity into the context. Handler tests use it
// to skip the token round-trip.
func WithIdentity(ctx context.Context, userID, organizationID string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyUserID, userID)
	return context.WithValue(ctx, ContextKeyOrganizationID, organizationID)
}

func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok {
				logger.WarnContext(r.Context(), "unauthorized access - missing token",
					"request_id", GetRequestID(r.Context()),
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(r.Context(), "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(r.Context()),
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx := WithIdentity(r.Context(), claims.UserID, claims.OrganizationID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
