package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dietgen/dietplan/internal/apperrors"
	"github.com/dietgen/dietplan/internal/models"
	"github.com/dietgen/dietplan/internal/repository"
)

// Mints and verifies tokens; *tokenmanager.TokenManager in production
type TokenManager interface {
	MintPair(user models.User) (models.TokenPair, error)
	ParseAccess(access string) (models.Claims, error)
	ParseRefresh(refresh string) (models.Claims, error)
}

type Config struct {
	// Hasher to use during user registration or login process
	// DefaultHasher if not set
	Hasher PasswordHasher

	// Clock to check refresh token expiration. time.Now if not set
	Now func() time.Time
}

// Auth service: registration, login, logout and refresh token rotation
type AuthService struct {
	// Manager to mint and parse tokens (access and refresh)
	tokens TokenManager

	// hasher to hash or compare user passwords
	hasher PasswordHasher

	// Users and refresh tokens
	storage repository.Storage

	now func() time.Time
}

func NewService(cfg Config, tokens TokenManager, storage repository.Storage) (*AuthService, error) {
	if tokens == nil || storage == nil {
		return nil, errors.New("token manager and storage must not be nil")
	}

	if cfg.Hasher == nil {
		cfg.Hasher = DefaultHasher
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &AuthService{
		tokens:  tokens,
		hasher:  cfg.Hasher,
		storage: storage,
		now:     cfg.Now,
	}, nil
}

// Register new user and start the session
// Has to return apperrors.ErrUserAlreadyExists if email or username is taken
func (s *AuthService) Register(ctx context.Context, email string, username string, password string) (models.Session, error) {
	var session models.Session

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return session, fmt.Errorf("can't use this as password, error=%w", err)
	}

	err = s.storage.InTx(ctx, func(storage repository.Storage) error {
		user, err := storage.User().CreateUser(ctx, repository.CreateUserParams{
			Email:          email,
			Username:       username,
			HashedPassword: hash,
		})
		if err != nil {
			return err
		}

		session, err = s.startSession(ctx, storage, user)
		return err
	})

	return session, err
}

// Login with email and password
// Previous sessions of the user stay valid
func (s *AuthService) Login(ctx context.Context, email string, password string) (models.Session, error) {
	user, err := s.storage.User().GetUserByEmail(ctx, email)
	if err != nil {
		return models.Session{}, err
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return models.Session{}, apperrors.ErrInvalidCredentials
	}

	return s.startSession(ctx, s.storage, user)
}

// Delete refresh token if it exists
func (s *AuthService) Logout(ctx context.Context, refresh string) error {
	if err := s.storage.Refresh().Delete(ctx, refresh); err != nil {
		return fmt.Errorf("error while deleting refresh token. Err: %w", err)
	}
	return nil
}

// Revoke every refresh token of the user, return count of revoked sessions
func (s *AuthService) LogoutAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.storage.Refresh().RevokeAllForUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("error while revoking user sessions. Err: %w", err)
	}
	return n, nil
}

// Exchange refresh token to the new pair. The old refresh token can't be used anymore
// Every failure is apperrors.ErrInvalidRefreshToken joined with the exact reason
func (s *AuthService) RefreshPair(ctx context.Context, refresh string) (models.TokenPair, error) {
	var pair models.TokenPair

	if _, err := s.tokens.ParseRefresh(refresh); err != nil {
		return pair, fmt.Errorf("%w: %w", apperrors.ErrInvalidRefreshToken, err)
	}

	err := s.storage.InTx(ctx, func(storage repository.Storage) error {
		token, err := storage.Refresh().Consume(ctx, refresh)
		if err != nil {
			return err
		}

		now := s.now()
		switch {
		case token.Revoked:
			return apperrors.ErrRefreshTokenRevoked
		case token.IsExpired(now):
			return apperrors.ErrRefreshTokenExpired
		}

		user, err := storage.User().GetUserByID(ctx, token.UserID)
		if err != nil {
			return err
		}

		session, err := s.startSession(ctx, storage, user)
		pair = session.Pair
		return err
	})

	switch {
	case err == nil:
		return pair, nil
	case errors.Is(err, apperrors.ErrRefreshTokenNotFound),
		errors.Is(err, apperrors.ErrRefreshTokenRevoked),
		errors.Is(err, apperrors.ErrRefreshTokenExpired),
		errors.Is(err, apperrors.ErrUserNotFound):
		return pair, fmt.Errorf("%w: %w", apperrors.ErrInvalidRefreshToken, err)
	default:
		return pair, fmt.Errorf("error while rotating refresh token. Err: %w", err)
	}
}

// Return user the access token issued for
// Every token or user failure is apperrors.ErrUnauthorized joined with the exact reason
func (s *AuthService) Authenticate(ctx context.Context, access string) (models.User, error) {
	if access == "" {
		return models.User{}, fmt.Errorf("%w: no access token", apperrors.ErrUnauthorized)
	}

	claims, err := s.tokens.ParseAccess(access)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %w", apperrors.ErrUnauthorized, err)
	}

	user, err := s.storage.User().GetUserByID(ctx, claims.UserID)
	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, apperrors.ErrUserNotFound):
		return models.User{}, fmt.Errorf("%w: %w", apperrors.ErrUnauthorized, err)
	default:
		return models.User{}, fmt.Errorf("error while loading user. Err: %w", err)
	}
}

func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.storage.User().ListUsers(ctx)
}

// Change name and phone of the user. Nil values are left as they are
// Has to return apperrors.ErrUserAlreadyExists if phone is taken by another user
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, name *string, phone *string) (models.User, error) {
	user, err := s.storage.User().UpdateUser(ctx, userID, repository.UpdateUserParams{Name: name, Phone: phone})
	if err != nil {
		return models.User{}, fmt.Errorf("error while updating user profile. Err: %w", err)
	}
	return user, nil
}

// Delete refresh tokens expired at the moment
func (s *AuthService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.storage.Refresh().DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("error while deleting expired tokens. Err: %w", err)
	}
	return n, nil
}

// Mint token pair for user and save refresh token
func (s *AuthService) startSession(ctx context.Context, storage repository.Storage, user models.User) (models.Session, error) {
	pair, err := s.tokens.MintPair(user)
	if err != nil {
		return models.Session{}, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	_, err = storage.Refresh().Save(ctx, models.RefreshToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		Token:     pair.Refresh.Value,
		CreatedAt: s.now(),
		ExpiresAt: pair.Refresh.ExpiresAt,
	})
	if err != nil {
		return models.Session{}, fmt.Errorf("error while saving refresh token. Err: %w", err)
	}

	return models.Session{Pair: pair, User: user}, nil
}
