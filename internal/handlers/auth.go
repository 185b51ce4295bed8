package handlers

import (
	"errors"
	"net/http"

	"github.com/dietgen/dietplan/internal/apperrors"
	"github.com/dietgen/dietplan/internal/handlers/cookie"
	"github.com/dietgen/dietplan/internal/handlers/render"
	"github.com/dietgen/dietplan/internal/handlers/userctx"
	"github.com/dietgen/dietplan/internal/logger"
)

func handleRegister(authService authService, jar cookie.Jar, l logger.Logger) http.Handler {
	type request struct {
		Email    string `json:"email" validate:"required,email,max=254"`
		Username string `json:"username" validate:"required,max=50"`
		Password string `json:"password" validate:"required,max=256"`
	}
	type response struct {
		AccessToken string `json:"accessToken"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		session, err := authService.Register(r.Context(), data.Email, data.Username, data.Password)

		switch {
		case err == nil:
			jar.SetAccess(w, session.Pair.Access)
			jar.SetRefresh(w, session.Pair.Refresh)
			render.JSONWithStatus(w, response{AccessToken: session.Pair.Access.Value}, http.StatusCreated)
		case errors.Is(err, apperrors.ErrUserAlreadyExists):
			render.ServiceError(w, "User already exists", http.StatusBadRequest)
		default:
			l.Error("Failed to register user", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleLogin(authService authService, jar cookie.Jar, l logger.Logger) http.Handler {
	type request struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	type response struct {
		AccessToken string       `json:"accessToken"`
		User        userResponse `json:"user"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		session, err := authService.Login(r.Context(), data.Email, data.Password)

		switch {
		case err == nil:
			jar.SetAccess(w, session.Pair.Access)
			jar.SetRefresh(w, session.Pair.Refresh)
			render.JSON(w, response{
				AccessToken: session.Pair.Access.Value,
				User:        toUserResponse(session.User),
			})
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.ServiceError(w, "User not found", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			render.ServiceError(w, "Invalid credentials", http.StatusBadRequest)
		default:
			l.Error("Failed to login user", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleTokenRefresh(authService authService, jar cookie.Jar, l logger.Logger) http.Handler {
	type response struct {
		AccessToken string `json:"accessToken"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		refresh := cookie.Value(r, cookie.RefreshName)
		if refresh == "" {
			render.ServiceError(w, "No refresh token provided", http.StatusBadRequest)
			return
		}

		pair, err := authService.RefreshPair(r.Context(), refresh)

		switch {
		case err == nil:
			jar.SetAccess(w, pair.Access)
			jar.SetRefresh(w, pair.Refresh)
			render.JSON(w, response{AccessToken: pair.Access.Value})
		case errors.Is(err, apperrors.ErrInvalidRefreshToken):
			l.Debug("Refresh token rejected", "error", err)
			render.ServiceError(w, "Invalid refresh token", http.StatusForbidden)
		default:
			l.Error("Failed to refresh tokens", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

// Forget the refresh token and clear session cookies
// Browsers send refresh cookie to the refresh path only, so the token may come in the body
func handleLogout(authService authService, jar cookie.Jar, l logger.Logger) http.Handler {
	type request struct {
		RefreshToken string `json:"refreshToken" validate:"omitempty,max=4096"`
	}
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidateOptional[request](w, r)
		if err != nil {
			return
		}

		refresh := cookie.Value(r, cookie.RefreshName)
		if refresh == "" {
			refresh = data.RefreshToken
		}

		if refresh != "" {
			if err := authService.Logout(r.Context(), refresh); err != nil {
				l.Error("Failed to logout", "error", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
				return
			}
		}

		jar.Clear(w)
		render.JSON(w, response{Message: "Logout successful"})
	})
}

func handleLogoutAll(authService authService, jar cookie.Jar, l logger.Logger) http.Handler {
	type response struct {
		Message string `json:"message"`
		Revoked int64  `json:"revoked"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		n, err := authService.LogoutAll(r.Context(), user.ID)
		if err != nil {
			l.Error("Failed to revoke user sessions", "error", err, "user_id", user.ID)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		jar.Clear(w)
		render.JSON(w, response{Message: "All sessions revoked", Revoked: n})
	})
}
