package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dietgen/dietplan/internal/models"
)

// Storage gives access to all repositories sharing the same connection or transaction
type Storage interface {
	User() UserRepo
	Refresh() RefreshTokenRepo
	Diet() DietRepo

	// Run fn in transaction. Commit if fn returns nil, rollback otherwise
	InTx(ctx context.Context, fn func(Storage) error) error
}

type CreateUserParams struct {
	Email          string
	Username       string
	HashedPassword string
	Name           *string
	Phone          *string
	Role           string // models.RoleUser if empty
}

// Profile fields to change. Nil field keeps the stored value
type UpdateUserParams struct {
	Name  *string
	Phone *string
}

// User repository interface
type UserRepo interface {
	// Create user
	// If user with email, username or phone exists already has to return error apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, params CreateUserParams) (models.User, error)

	// Get user by it's id or email
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)

	// List all users ordered by creation time
	ListUsers(ctx context.Context) ([]models.User, error)

	// Update user profile
	// If user not found must return apperrors.ErrUserNotFound
	// If phone belongs to another user must return apperrors.ErrUserAlreadyExists
	UpdateUser(ctx context.Context, userID uuid.UUID, params UpdateUserParams) (models.User, error)
}

// RefreshToken repository interface
type RefreshTokenRepo interface {
	// Save new token
	Save(ctx context.Context, token models.RefreshToken) (models.RefreshToken, error)

	// Return the token even if it expired or revoked
	// If not found must return apperrors.ErrRefreshTokenNotFound
	Get(ctx context.Context, token string) (models.RefreshToken, error)

	// Delete token and return it as it was before deletion
	// Only one of concurrent callers gets the token, others get apperrors.ErrRefreshTokenNotFound
	Consume(ctx context.Context, token string) (models.RefreshToken, error)

	// Delete token. Missing token is not an error
	Delete(ctx context.Context, token string) error

	// Mark all user tokens revoked, return number of affected tokens
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) (int64, error)

	// Delete tokens expired at the moment, return number of deleted tokens
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Diet repository interface
type DietRepo interface {
	CreateDiet(ctx context.Context, diet models.Diet) (models.Diet, error)

	// If not found must return apperrors.ErrDietNotFound
	GetDiet(ctx context.Context, dietID uuid.UUID) (models.Diet, error)

	// List user diets, newest first
	ListDiets(ctx context.Context, userID uuid.UUID) ([]models.Diet, error)

	// Rewrite all diet fields except id, user and creation time
	// If not found must return apperrors.ErrDietNotFound
	UpdateDiet(ctx context.Context, diet models.Diet) (models.Diet, error)
}
