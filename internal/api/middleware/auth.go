// internal/api/middleware/auth.go
package middleware

import (
	"context"
	"net/http"
	"strings"

	"coinquest/internal/api/types"
	"coinquest/internal/domain"
	"coinquest/internal/util"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type contextKey int

const userContextKey contextKey = iota

// Authenticator resolves a bearer token to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// WithUser stores the authenticated user in ctx.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the authenticated user, or nil if the request was not authenticated.
func UserFromContext(ctx context.Context) *domain.User {
	user, _ := ctx.Value(userContextKey).(*domain.User)
	return user
}

// UserIDFromContext returns the authenticated user's id.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	user := UserFromContext(ctx)
	if user == nil {
		return uuid.Nil, false
	}
	return user.ID, true
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireAuth rejects requests without a valid bearer token with 401 and
// stores the user in the request context otherwise.
func RequireAuth(auth Authenticator, logger logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				_ = types.WriteJSON(w, http.StatusUnauthorized, types.Error("Missing bearer token"))
				return
			}
			user, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				if !util.IsError(err, util.ErrUnauthorized) {
					logger.WithError(err).Error("Failed to authenticate request")
					_ = types.WriteJSON(w, http.StatusInternalServerError, types.Error("Internal server error"))
					return
				}
				_ = types.WriteJSON(w, http.StatusUnauthorized, types.Error("Invalid or expired token"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}
