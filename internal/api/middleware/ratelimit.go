package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rensmac/tasktalk/internal/api/response"
	"github.com/rensmac/tasktalk/internal/repository/redis"
	"github.com/rensmac/tasktalk/internal/security"
)

// RateLimitMiddleware throttles the chat surface. It keys on the token
// subject when the caller presents a verifiable bearer token, and on the
// remote address otherwise. Limiter failures fail open.
type RateLimitMiddleware struct {
	limiter *redis.RateLimiter
	tokens  *security.TokenManager
}

// NewRateLimitMiddleware creates a new rate limit middleware
func NewRateLimitMiddleware(limiter *redis.RateLimiter, tokens *security.TokenManager) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter, tokens: tokens}
}

// Limit applies per-caller rate limiting.
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.limiter == nil {
			next.ServeHTTP(w, r)
			return
		}

		key := r.RemoteAddr
		if token, ok := ExtractBearer(r); ok {
			if email, err := m.tokens.Verify(token); err == nil {
				key = email
			}
		}

		allowed, remaining, resetTime, err := m.limiter.Allow(r.Context(), key)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", resetTime.Format(time.RFC3339))

		if !allowed {
			response.Error(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}
