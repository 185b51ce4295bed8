package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/dietgen/dietplan/internal/handlers/cookie"
	"github.com/dietgen/dietplan/internal/handlers/middleware"
	"github.com/dietgen/dietplan/internal/logger"
	"github.com/dietgen/dietplan/internal/models"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

type RouterOptions struct {
	// Set Secure flag on session cookies. Should be true in production
	SecureCookies bool

	// Origins allowed to make credentialed cross origin requests
	CORSOrigins []string
}

func NewRouter(
	authService authService,
	dietService dietService,
	opts RouterOptions,
	logger logger.Logger,
) http.Handler {
	jar := cookie.Jar{Secure: opts.SecureCookies}

	withAuth := middleware.AuthMiddleware(authService, logger)
	withAdmin := func(h http.Handler) http.Handler {
		return chain(h, withAuth, middleware.RequireRole(models.RoleAdmin))
	}

	apiauth := http.NewServeMux()

	apiauth.Handle("POST /register", handleRegister(authService, jar, logger))
	apiauth.Handle("POST /login", handleLogin(authService, jar, logger))
	apiauth.Handle("POST /refresh", handleTokenRefresh(authService, jar, logger))
	apiauth.Handle("POST /logout", withAuth(handleLogout(authService, jar, logger)))
	apiauth.Handle("POST /logout-all", withAuth(handleLogoutAll(authService, jar, logger)))
	apiauth.Handle("GET /me", withAuth(handleUserMe()))
	apiauth.Handle("GET /users", withAdmin(handleListUsers(authService, logger)))

	root := http.NewServeMux()
	root.Handle("/api/auth/", http.StripPrefix("/api/auth", apiauth))

	root.Handle("PATCH /api/user/update", withAuth(handleUpdateProfile(authService, logger)))

	root.Handle("POST /api/diet", withAuth(handleCreateDiet(dietService, logger)))
	root.Handle("GET /api/diet", withAuth(handleListDiets(dietService, logger)))
	root.Handle("GET /api/diet/{id}", withAuth(handleGetDiet(dietService, logger)))
	root.Handle("PUT /api/diet/{id}", withAuth(handleUpdateDiet(dietService, logger)))
	root.Handle("PATCH /api/diet/{id}/routine/{day}/meals/{meal}", withAuth(handleSetMealStatus(dietService, logger)))

	handler := chain(root,
		middleware.LoggerMiddleware(logger),
		middleware.CORSMiddleware(opts.CORSOrigins),
	)

	return handler
}

type authService interface {
	// Register user with email, username and password
	// Has to return apperrors.ErrUserAlreadyExists if user already exists
	Register(ctx context.Context, email string, username string, password string) (models.Session, error)

	// Login user with email and password
	// Has to return apperrors.ErrUserNotFound if user not found
	// Has to return apperrors.ErrInvalidCredentials if password does not match
	Login(ctx context.Context, email string, password string) (models.Session, error)

	// Forget refresh token. Unknown token is not an error
	Logout(ctx context.Context, refresh string) error

	// Revoke all refresh tokens of the user
	LogoutAll(ctx context.Context, userID uuid.UUID) (int64, error)

	// Exchange refresh token to the new pair
	// Has to return apperrors.ErrInvalidRefreshToken if token can't be used
	RefreshPair(ctx context.Context, refresh string) (models.TokenPair, error)

	// Return user the access token issued for
	// Has to return apperrors.ErrUnauthorized if token or user is not valid
	Authenticate(ctx context.Context, access string) (models.User, error)

	ListUsers(ctx context.Context) ([]models.User, error)

	// Change profile of the user. Nil values are not changed
	// Has to return apperrors.ErrUserAlreadyExists if phone is taken
	UpdateProfile(ctx context.Context, userID uuid.UUID, name *string, phone *string) (models.User, error)
}

type dietService interface {
	Create(ctx context.Context, userID uuid.UUID, diet models.Diet) (models.Diet, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.Diet, error)

	// Has to return apperrors.ErrDietNotFound for diets of other users
	Get(ctx context.Context, userID uuid.UUID, dietID uuid.UUID) (models.Diet, error)
	Update(ctx context.Context, userID uuid.UUID, diet models.Diet) (models.Diet, error)

	// Has to return apperrors.ErrMealNotFound if day or meal is out of routine
	SetMealCompleted(ctx context.Context, userID uuid.UUID, dietID uuid.UUID, day int, meal int, completed bool) (models.Diet, error)
}
