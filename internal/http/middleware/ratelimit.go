package middleware

import (
	"fmt"
	"net/http"
	"time"

	"caresync-api/internal/auth"
	"caresync-api/internal/observability/logger"
	"caresync-api/internal/ratelimit"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// RateLimitMiddleware enforces rate limiting per authenticated user
func RateLimitMiddleware(limiter *ratelimit.RedisRateLimiter, limitPerMin int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := logger.GetLogger(r.Context())

			// Set by JWTAuthMiddleware
			userID := auth.GetUserID(r.Context())
			if userID == "" {
				log.Error(r.Context(), "user id not found in context for rate limiting",
					logger.Module("ratelimit"),
					logger.Action("check"),
				)
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}

			allowed, remaining, err := limiter.AllowRequest(r.Context(), userID, limitPerMin, 60)
			if err != nil {
				log.Error(r.Context(), "rate limit check failed",
					logger.Module("ratelimit"),
					logger.Action("check"),
					zap.Error(err),
				)
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}

			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", limitPerMin))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
			w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", time.Now().Add(60*time.Second).Unix()))

			if !allowed {
				span := trace.SpanFromContext(r.Context())
				span.AddEvent("rate_limit_exceeded")

				log.Warn(r.Context(), "rate limit exceeded",
					logger.Module("ratelimit"),
					logger.Action("check"),
					zap.Int("limit", limitPerMin),
				)

				w.Header().Set("Retry-After", "60")
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
