package auth

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"caresync-api/internal/observability/logger"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// JWTAuthMiddleware validates session tokens and injects claims into context
func JWTAuthMiddleware(validator *HS256Validator, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Extract token from Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				log.Warn(r.Context(), "missing authorization header",
					logger.Module("auth"),
					logger.Action("authenticate"),
				)
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}

			// Check Bearer format
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				log.Warn(r.Context(), "invalid authorization header format",
					logger.Module("auth"),
					logger.Action("authenticate"),
				)
				http.Error(w, "invalid authorization header format", http.StatusUnauthorized)
				return
			}

			tokenString := parts[1]

			claims, err := validator.ValidateSession(tokenString)
			if err != nil {
				reason := AuthFailureUnknown
				if authErr, ok := IsAuthError(err); ok {
					reason = authErr.Reason
				}
				log.Warn(r.Context(), "token validation failed",
					logger.Module("auth"),
					logger.Action("authenticate"),
					zap.Error(err),
					zap.String("reason", string(reason)),
					zap.String("token_prefix", maskToken(tokenString)),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
				)
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			// Add claims and user ID to context
			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			ctx = logger.SetUserIDInContext(ctx, claims.UserID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClaims retrieves session claims from context
func GetClaims(ctx context.Context) (*SessionClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*SessionClaims)
	return claims, ok
}

// GetUserID retrieves the authenticated user ID from context, empty when the
// request is unauthenticated
func GetUserID(ctx context.Context) string {
	if claims, ok := GetClaims(ctx); ok {
		return claims.UserID
	}
	return ""
}
