package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rensmac/tasktalk/internal/api/response"
	"github.com/rensmac/tasktalk/internal/domain"
	"github.com/rensmac/tasktalk/internal/security"
)

type contextKey string

const (
	userKey  contextKey = "user"
	tokenKey contextKey = "token"
)

// unauthorizedMessage is the single 401 body. Missing header, malformed
// scheme, bad signature, expiry, and unknown subject must all produce this
// exact response so a caller cannot probe which step failed.
const unauthorizedMessage = "could not validate credentials"

// AuthMiddleware resolves the bearer token on each request to a user record.
type AuthMiddleware struct {
	tokens *security.TokenManager
	users  domain.UserRepository
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(tokens *security.TokenManager, users domain.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

// Authenticate rejects the request with a uniform 401 unless a valid bearer
// token resolving to a known user is presented.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := ExtractBearer(r)
		if !ok {
			response.Unauthorized(w, unauthorizedMessage)
			return
		}

		email, err := m.tokens.Verify(token)
		if err != nil {
			response.Unauthorized(w, unauthorizedMessage)
			return
		}

		user, err := m.users.GetByEmail(r.Context(), email)
		if err != nil || user == nil {
			response.Unauthorized(w, unauthorizedMessage)
			return
		}

		ctx := context.WithValue(r.Context(), userKey, user)
		ctx = context.WithValue(ctx, tokenKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ExtractBearer pulls the bearer credential from the Authorization header.
// The scheme match is case-insensitive; an empty credential does not count.
func ExtractBearer(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}

// GetUser gets the authenticated user from context
func GetUser(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userKey).(*domain.User)
	return user, ok
}

// GetToken gets the raw bearer token from context
func GetToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey).(string)
	return token, ok
}
