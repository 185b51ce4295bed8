package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dietgen/dietplan/internal/apperrors"
	"github.com/dietgen/dietplan/internal/handlers/render"
	"github.com/dietgen/dietplan/internal/handlers/userctx"
	"github.com/dietgen/dietplan/internal/logger"
	"github.com/dietgen/dietplan/internal/models"
)

// User as it is shown to clients. Never carries the password hash
type userResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Name      *string   `json:"name,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserResponse(u models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		Name:      u.Name,
		Phone:     u.Phone,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func handleUserMe() http.Handler {
	type response struct {
		User userResponse `json:"user"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}
		render.JSON(w, response{User: toUserResponse(user)})
	})
}

func handleListUsers(authService authService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		users, err := authService.ListUsers(r.Context())
		if err != nil {
			l.Error("Failed to list users", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		res := make([]userResponse, 0, len(users))
		for _, u := range users {
			res = append(res, toUserResponse(u))
		}
		render.JSON(w, res)
	})
}

// Change name or phone of the current user
func handleUpdateProfile(authService authService, l logger.Logger) http.Handler {
	type request struct {
		Name  *string `json:"name" validate:"omitempty,min=1,max=100"`
		Phone *string `json:"phone" validate:"omitempty,min=3,max=32"`
	}
	type response struct {
		User userResponse `json:"user"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		updated, err := authService.UpdateProfile(r.Context(), user.ID, data.Name, data.Phone)

		switch {
		case err == nil:
			render.JSON(w, response{User: toUserResponse(updated)})
		case errors.Is(err, apperrors.ErrUserAlreadyExists):
			render.ServiceError(w, "Phone is already in use", http.StatusBadRequest)
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.ServiceError(w, "User not found", http.StatusNotFound)
		default:
			l.Error("Failed to update user profile", "error", err, "user_id", user.ID)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}
