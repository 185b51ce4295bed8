package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/dietgen/dietplan/internal/apperrors"
	"github.com/dietgen/dietplan/internal/handlers/cookie"
	"github.com/dietgen/dietplan/internal/handlers/render"
	"github.com/dietgen/dietplan/internal/handlers/userctx"
	"github.com/dietgen/dietplan/internal/models"
)

type authService interface {
	// Return user the access token issued for
	// Has to return apperrors.ErrUnauthorized if token or user is not valid
	Authenticate(ctx context.Context, access string) (models.User, error)
}

type errorLogger interface {
	Error(msg string, args ...any)
}

// Authenticate request by access token cookie and put the user to the request context
func AuthMiddleware(as authService, l errorLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := as.Authenticate(r.Context(), cookie.Value(r, cookie.AccessName))

			switch {
			case err == nil:
				next.ServeHTTP(w, r.WithContext(userctx.New(r.Context(), user)))
			case errors.Is(err, apperrors.ErrUnauthorized):
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
			default:
				l.Error("Failed to authenticate request", "error", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
		})
	}
}

// Allow only users with the role. Must be used after AuthMiddleware
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := userctx.FromContext(r.Context())
			if !ok {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if user.Role != role {
				render.ServiceError(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
