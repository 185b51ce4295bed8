package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/dietgen/dietplan/internal/apperrors"
	"github.com/dietgen/dietplan/internal/models"
)

type DietRepo struct {
	DB DBTX
}

const dietColumns = `id, user_id, created_at, modified_at, age, gender, height, weights, target_weight, diabetes, routine`

const createDiet = `-- name: CreateDiet
INSERT INTO diets (id, user_id, created_at, modified_at, age, gender, height, weights, target_weight, diabetes, routine)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING ` + dietColumns

func (r *DietRepo) CreateDiet(ctx context.Context, d models.Diet) (models.Diet, error) {
	now := time.Now()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.CreatedAt = now
	d.ModifiedAt = now
	withEmptySlices(&d)

	rows, _ := r.DB.Query(ctx, createDiet,
		d.ID, d.UserID, d.CreatedAt, d.ModifiedAt,
		d.Age, d.Gender, d.Height, d.Weights, d.TargetWeight, d.Diabetes, d.Routine,
	)
	created, err := pgx.CollectOneRow(rows, rowToDiet)
	if err != nil {
		return created, fmt.Errorf("db error: %w", err)
	}

	return created, nil
}

const getDiet = `-- name: GetDiet
SELECT ` + dietColumns + ` FROM diets
WHERE id = $1
`

func (r *DietRepo) GetDiet(ctx context.Context, dietID uuid.UUID) (models.Diet, error) {
	rows, _ := r.DB.Query(ctx, getDiet, dietID)
	return collectDiet(rows)
}

const listDiets = `-- name: ListDiets
SELECT ` + dietColumns + ` FROM diets
WHERE user_id = $1
ORDER BY created_at DESC, id
`

func (r *DietRepo) ListDiets(ctx context.Context, userID uuid.UUID) ([]models.Diet, error) {
	rows, _ := r.DB.Query(ctx, listDiets, userID)
	diets, err := pgx.CollectRows(rows, rowToDiet)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return diets, nil
}

const updateDiet = `-- name: UpdateDiet
UPDATE diets
SET modified_at = $2, age = $3, gender = $4, height = $5, weights = $6, target_weight = $7, diabetes = $8, routine = $9
WHERE id = $1
RETURNING ` + dietColumns

func (r *DietRepo) UpdateDiet(ctx context.Context, d models.Diet) (models.Diet, error) {
	withEmptySlices(&d)

	rows, _ := r.DB.Query(ctx, updateDiet,
		d.ID, time.Now(),
		d.Age, d.Gender, d.Height, d.Weights, d.TargetWeight, d.Diabetes, d.Routine,
	)
	return collectDiet(rows)
}

// Weights and routine stored as jsonb NOT NULL: nil slices must become '[]' not 'null'
func withEmptySlices(d *models.Diet) {
	if d.Weights == nil {
		d.Weights = []decimal.Decimal{}
	}
	if d.Routine == nil {
		d.Routine = []models.RoutineDay{}
	}
}

func collectDiet(rows pgx.Rows) (models.Diet, error) {
	diet, err := pgx.CollectOneRow(rows, rowToDiet)

	switch {
	case err == nil:
		return diet, nil
	case errors.Is(err, pgx.ErrNoRows):
		return diet, apperrors.ErrDietNotFound
	default:
		return diet, fmt.Errorf("db error: %w", err)
	}
}

func rowToDiet(row pgx.CollectableRow) (models.Diet, error) {
	var d models.Diet
	err := row.Scan(
		&d.ID, &d.UserID, &d.CreatedAt, &d.ModifiedAt,
		&d.Age, &d.Gender, &d.Height, &d.Weights, &d.TargetWeight, &d.Diabetes, &d.Routine,
	)
	return d, err
}
