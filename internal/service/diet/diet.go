package diet

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dietgen/dietplan/internal/apperrors"
	"github.com/dietgen/dietplan/internal/models"
	"github.com/dietgen/dietplan/internal/repository"
)

type DietService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *DietService {
	return &DietService{storage: storage}
}

// Create diet plan owned by user
func (s *DietService) Create(ctx context.Context, userID uuid.UUID, diet models.Diet) (models.Diet, error) {
	diet.UserID = userID
	return s.storage.Diet().CreateDiet(ctx, diet)
}

func (s *DietService) List(ctx context.Context, userID uuid.UUID) ([]models.Diet, error) {
	return s.storage.Diet().ListDiets(ctx, userID)
}

// Get diet plan of the user
// Plans of other users are reported as apperrors.ErrDietNotFound
func (s *DietService) Get(ctx context.Context, userID uuid.UUID, dietID uuid.UUID) (models.Diet, error) {
	return getOwned(ctx, s.storage, userID, dietID)
}

// Replace plan fields. ID, owner and creation time are kept
func (s *DietService) Update(ctx context.Context, userID uuid.UUID, diet models.Diet) (models.Diet, error) {
	var updated models.Diet

	err := s.storage.InTx(ctx, func(storage repository.Storage) error {
		current, err := getOwned(ctx, storage, userID, diet.ID)
		if err != nil {
			return err
		}

		diet.UserID = current.UserID
		diet.CreatedAt = current.CreatedAt
		updated, err = storage.Diet().UpdateDiet(ctx, diet)
		return err
	})

	return updated, err
}

// Mark meal of the routine day as completed or not
// day and meal are zero based positions in the routine
func (s *DietService) SetMealCompleted(ctx context.Context, userID uuid.UUID, dietID uuid.UUID, day int, meal int, completed bool) (models.Diet, error) {
	var updated models.Diet

	err := s.storage.InTx(ctx, func(storage repository.Storage) error {
		diet, err := getOwned(ctx, storage, userID, dietID)
		if err != nil {
			return err
		}

		if day < 0 || day >= len(diet.Routine) {
			return fmt.Errorf("%w: no day %d in routine", apperrors.ErrMealNotFound, day)
		}
		meals := diet.Routine[day].Meals
		if meal < 0 || meal >= len(meals) {
			return fmt.Errorf("%w: no meal %d at day %d", apperrors.ErrMealNotFound, meal, day)
		}

		meals[meal].Completed = completed
		updated, err = storage.Diet().UpdateDiet(ctx, diet)
		return err
	})

	return updated, err
}

func getOwned(ctx context.Context, storage repository.Storage, userID uuid.UUID, dietID uuid.UUID) (models.Diet, error) {
	diet, err := storage.Diet().GetDiet(ctx, dietID)
	if err != nil {
		return models.Diet{}, err
	}
	if diet.UserID != userID {
		return models.Diet{}, errors.Join(apperrors.ErrDietNotFound, fmt.Errorf("diet %s belongs to another user", dietID))
	}
	return diet, nil
}
