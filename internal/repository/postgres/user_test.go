package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dietgen/dietplan/internal/apperrors"
	"github.com/dietgen/dietplan/internal/models"
	"github.com/dietgen/dietplan/internal/repository"
	"github.com/dietgen/dietplan/internal/testutil"
)

func strPtr(s string) *string { return &s }

func Test_UserRepo(t *testing.T) {
	t.Parallel() // It's ok to run in parallel with other tests, but not with subtests

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	params := repository.CreateUserParams{
		Email:          "a@x.com",
		Username:       "a",
		HashedPassword: "hashedpassword123",
	}

	t.Run("create user ok", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			user, err := r.CreateUser(t.Context(), params)

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, user.ID)
			assert.Equal(t, "a@x.com", user.Email)
			assert.Equal(t, "a", user.Username)
			assert.Equal(t, "hashedpassword123", user.HashedPassword)
			assert.Equal(t, models.RoleUser, user.Role, "role should be 'user' by default")
			assert.Nil(t, user.Name)
			assert.Nil(t, user.Phone)
			assert.WithinDuration(t, time.Now(), user.CreatedAt, time.Second, "CreatedAt should be recent")
		})
	})

	t.Run("create user normalizes email", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			user, err := r.CreateUser(t.Context(), repository.CreateUserParams{
				Email:          "  Mixed@Case.COM ",
				Username:       "mixed",
				HashedPassword: "hash",
				Name:           strPtr("Mixed"),
				Phone:          strPtr("+100"),
				Role:           models.RoleAdmin,
			})

			require.NoError(t, err)
			assert.Equal(t, "mixed@case.com", user.Email)
			assert.Equal(t, "Mixed", *user.Name)
			assert.Equal(t, "+100", *user.Phone)
			assert.True(t, user.IsAdmin())
		})
	})

	t.Run("create user duplicates fail", func(t *testing.T) {
		tests := []struct {
			name   string
			second repository.CreateUserParams
		}{
			{"same email", repository.CreateUserParams{Email: "A@X.com", Username: "other", HashedPassword: "h"}},
			{"same username", repository.CreateUserParams{Email: "other@x.com", Username: "a", HashedPassword: "h"}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
					r := UserRepo{DB: tx}
					_, err := r.CreateUser(t.Context(), params)
					require.NoError(t, err)

					_, err = r.CreateUser(t.Context(), tt.second)

					require.Error(t, err)
					require.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
				})
			})
		}
	})

	t.Run("users without phone do not clash", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			_, err := r.CreateUser(t.Context(), params)
			require.NoError(t, err)
			_, err = r.CreateUser(t.Context(), repository.CreateUserParams{Email: "b@x.com", Username: "b", HashedPassword: "h"})

			require.NoError(t, err, "empty phones must not violate unique constraint")
		})
	})

	t.Run("get user by id ok", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created, err := r.CreateUser(t.Context(), params)
			require.NoError(t, err)

			got, err := r.GetUserByID(t.Context(), created.ID)

			require.NoError(t, err)
			assert.Equal(t, created, got)
		})
	})

	t.Run("get user by id not found", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			_, err := r.GetUserByID(t.Context(), uuid.New())

			assert.ErrorIs(t, err, apperrors.ErrUserNotFound, "should return well known error")
		})
	})

	t.Run("get user by email ok", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created, err := r.CreateUser(t.Context(), params)
			require.NoError(t, err)

			got, err := r.GetUserByEmail(t.Context(), " A@x.COM")

			require.NoError(t, err, "email lookup must be case insensitive")
			assert.Equal(t, created.ID, got.ID)
		})
	})

	t.Run("get user by email not found", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			_, err := r.GetUserByEmail(t.Context(), "nobody@x.com")

			assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})

	t.Run("list users", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			first, err := r.CreateUser(t.Context(), params)
			require.NoError(t, err)
			second, err := r.CreateUser(t.Context(), repository.CreateUserParams{Email: "b@x.com", Username: "b", HashedPassword: "h"})
			require.NoError(t, err)

			users, err := r.ListUsers(t.Context())

			require.NoError(t, err)
			require.Len(t, users, 2)
			ids := []uuid.UUID{users[0].ID, users[1].ID}
			assert.ElementsMatch(t, []uuid.UUID{first.ID, second.ID}, ids)
		})
	})

	t.Run("update user sets profile", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created, err := r.CreateUser(t.Context(), params)
			require.NoError(t, err)

			updated, err := r.UpdateUser(t.Context(), created.ID, repository.UpdateUserParams{Name: strPtr("Anna"), Phone: strPtr("+7900")})

			require.NoError(t, err)
			assert.Equal(t, "Anna", *updated.Name)
			assert.Equal(t, "+7900", *updated.Phone)
			assert.Equal(t, created.Email, updated.Email, "other fields stay the same")
			assert.Equal(t, created.HashedPassword, updated.HashedPassword)

			got, err := r.GetUserByID(t.Context(), created.ID)
			require.NoError(t, err)
			assert.Equal(t, updated, got, "update should be persisted")
		})
	})

	t.Run("update user keeps nil fields", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created, err := r.CreateUser(t.Context(), repository.CreateUserParams{
				Email: "a@x.com", Username: "a", HashedPassword: "h", Name: strPtr("Anna"), Phone: strPtr("+7900"),
			})
			require.NoError(t, err)

			updated, err := r.UpdateUser(t.Context(), created.ID, repository.UpdateUserParams{Name: strPtr("Ann")})

			require.NoError(t, err)
			assert.Equal(t, "Ann", *updated.Name)
			require.NotNil(t, updated.Phone)
			assert.Equal(t, "+7900", *updated.Phone)
		})
	})

	t.Run("update user duplicate phone", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			_, err := r.CreateUser(t.Context(), repository.CreateUserParams{Email: "b@x.com", Username: "b", HashedPassword: "h", Phone: strPtr("+7900")})
			require.NoError(t, err)
			created, err := r.CreateUser(t.Context(), params)
			require.NoError(t, err)

			_, err = r.UpdateUser(t.Context(), created.ID, repository.UpdateUserParams{Phone: strPtr("+7900")})

			require.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
		})
	})

	t.Run("update user not found", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			_, err := r.UpdateUser(t.Context(), uuid.New(), repository.UpdateUserParams{Name: strPtr("Anna")})

			assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})
}
