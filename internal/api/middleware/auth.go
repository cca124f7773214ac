package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dom/vidshare-backend/internal/api/response"
	"github.com/dom/vidshare-backend/internal/domain"
	"github.com/dom/vidshare-backend/internal/service"
	"github.com/google/uuid"
)

type contextKey string

const (
	UserKey contextKey = "user"

	AccessTokenCookie = "accessToken"
)

// Auth rejects requests without a valid access token. The token is read from
// the accessToken cookie first, then from a Bearer Authorization header.
func Auth(sessions *service.SessionService, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				response.Error(w, http.StatusUnauthorized, "unauthorized request")
				return
			}

			user, err := sessions.Authenticate(r.Context(), token)
			if err != nil {
				logger.WarnContext(r.Context(), "access token rejected", "path", r.URL.Path, "error", err)
				response.FromError(w, r, logger, "middleware.Auth", err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// OptionalAuth attaches the user when a valid token is present and lets
// anonymous requests through otherwise.
func OptionalAuth(sessions *service.SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := tokenFromRequest(r); token != "" {
				if user, err := sessions.Authenticate(r.Context(), token); err == nil {
					r = r.WithContext(WithUser(r.Context(), user))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(AccessTokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	header := r.Header.Get("Authorization")
	if scheme, token, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return ""
}

func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

func GetUser(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(UserKey).(*domain.User)
	return user, ok && user != nil
}

func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	user, ok := GetUser(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return user.ID, true
}
