package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dietgen/dietplan/internal/apperrors"
	"github.com/dietgen/dietplan/internal/handlers/render"
	"github.com/dietgen/dietplan/internal/handlers/userctx"
	"github.com/dietgen/dietplan/internal/logger"
	"github.com/dietgen/dietplan/internal/models"
)

type mealBody struct {
	Name      string          `json:"name" validate:"required,max=100"`
	Time      string          `json:"time" validate:"required,datetime=15:04"`
	Calories  decimal.Decimal `json:"calories" validate:"gte=0"`
	Completed bool            `json:"completed"`
}

type routineDayBody struct {
	Day   int        `json:"day" validate:"gte=1"`
	Meals []mealBody `json:"meals" validate:"dive"`
}

type dietBody struct {
	Age          int               `json:"age" validate:"required,gt=0,lt=150"`
	Gender       string            `json:"gender" validate:"required,oneof=male female other"`
	Height       decimal.Decimal   `json:"height" validate:"gt=0"`
	Weights      []decimal.Decimal `json:"weights" validate:"required,min=1,dive,gt=0"`
	TargetWeight decimal.Decimal   `json:"targetWeight" validate:"gt=0"`
	Diabetes     string            `json:"diabetes" validate:"required,diabetes"`
	Routine      []routineDayBody  `json:"routine" validate:"dive"`
}

func (b dietBody) toModel() models.Diet {
	routine := make([]models.RoutineDay, 0, len(b.Routine))
	for _, day := range b.Routine {
		meals := make([]models.Meal, 0, len(day.Meals))
		for _, m := range day.Meals {
			meals = append(meals, models.Meal(m))
		}
		routine = append(routine, models.RoutineDay{Day: day.Day, Meals: meals})
	}

	return models.Diet{
		Age:          b.Age,
		Gender:       b.Gender,
		Height:       b.Height,
		Weights:      b.Weights,
		TargetWeight: b.TargetWeight,
		Diabetes:     b.Diabetes,
		Routine:      routine,
	}
}

type dietResponse struct {
	ID           uuid.UUID           `json:"id"`
	UserID       uuid.UUID           `json:"userId"`
	Age          int                 `json:"age"`
	Gender       string              `json:"gender"`
	Height       decimal.Decimal     `json:"height"`
	Weights      []decimal.Decimal   `json:"weights"`
	TargetWeight decimal.Decimal     `json:"targetWeight"`
	Diabetes     string              `json:"diabetes"`
	Routine      []models.RoutineDay `json:"routine"`
	CreatedAt    time.Time           `json:"createdAt"`
	ModifiedAt   time.Time           `json:"modifiedAt"`
}

func toDietResponse(d models.Diet) dietResponse {
	return dietResponse{
		ID:           d.ID,
		UserID:       d.UserID,
		Age:          d.Age,
		Gender:       d.Gender,
		Height:       d.Height,
		Weights:      d.Weights,
		TargetWeight: d.TargetWeight,
		Diabetes:     d.Diabetes,
		Routine:      d.Routine,
		CreatedAt:    d.CreatedAt,
		ModifiedAt:   d.ModifiedAt,
	}
}

func handleCreateDiet(dietService dietService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		body, err := render.BindAndValidate[dietBody](w, r)
		if err != nil {
			return
		}

		diet, err := dietService.Create(r.Context(), user.ID, body.toModel())
		if err != nil {
			l.Error("Failed to create diet", "error", err, "user_id", user.ID)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSONWithStatus(w, toDietResponse(diet), http.StatusCreated)
	})
}

func handleListDiets(dietService dietService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		diets, err := dietService.List(r.Context(), user.ID)
		if err != nil {
			l.Error("Failed to list diets", "error", err, "user_id", user.ID)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		res := make([]dietResponse, 0, len(diets))
		for _, d := range diets {
			res = append(res, toDietResponse(d))
		}
		render.JSON(w, res)
	})
}

func handleGetDiet(dietService dietService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		dietID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Invalid diet id", http.StatusBadRequest)
			return
		}

		diet, err := dietService.Get(r.Context(), user.ID, dietID)
		if err != nil {
			renderDietError(w, l, err)
			return
		}

		render.JSON(w, toDietResponse(diet))
	})
}

func handleUpdateDiet(dietService dietService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		dietID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Invalid diet id", http.StatusBadRequest)
			return
		}

		body, err := render.BindAndValidate[dietBody](w, r)
		if err != nil {
			return
		}

		diet := body.toModel()
		diet.ID = dietID
		diet, err = dietService.Update(r.Context(), user.ID, diet)
		if err != nil {
			renderDietError(w, l, err)
			return
		}

		render.JSON(w, toDietResponse(diet))
	})
}

func handleSetMealStatus(dietService dietService, l logger.Logger) http.Handler {
	type request struct {
		Completed *bool `json:"completed" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		dietID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Invalid diet id", http.StatusBadRequest)
			return
		}
		day, dayErr := strconv.Atoi(r.PathValue("day"))
		meal, mealErr := strconv.Atoi(r.PathValue("meal"))
		if dayErr != nil || mealErr != nil {
			render.ServiceError(w, "Day and meal must be numbers", http.StatusBadRequest)
			return
		}

		body, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		diet, err := dietService.SetMealCompleted(r.Context(), user.ID, dietID, day, meal, *body.Completed)
		if err != nil {
			renderDietError(w, l, err)
			return
		}

		render.JSON(w, toDietResponse(diet))
	})
}

func renderDietError(w http.ResponseWriter, l logger.Logger, err error) {
	switch {
	case errors.Is(err, apperrors.ErrDietNotFound):
		render.ServiceError(w, "Diet not found", http.StatusNotFound)
	case errors.Is(err, apperrors.ErrMealNotFound):
		render.ServiceError(w, "Meal not found", http.StatusNotFound)
	default:
		l.Error("Diet request failed", "error", err)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
	}
}
