package userctx

import (
	"context"

	"github.com/dietgen/dietplan/internal/models"
)

type userKey struct{}

// Attach authenticated user to the request context
func New(ctx context.Context, u models.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// Authenticated user of the request. False if the request passed no auth middleware
func FromContext(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(userKey{}).(models.User)
	return u, ok
}
