package user

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
)

type contextKey string

// UserKey is the context key under which the middleware stores the
// authenticated user.
const UserKey contextKey = "user"

// ErrNoUser is returned when a request context carries no user. Every
// user-scoped service checks for it before touching its repository.
var ErrNoUser = errors.New("user not found")

// WithUser returns a context carrying the given user. Repositories key all
// rows by the id found here.
func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, UserKey, u)
}

// CurrentUser returns the user stored in the context, or ErrNoUser.
func CurrentUser(ctx context.Context) (User, error) {
	u, ok := ctx.Value(UserKey).(User)
	if !ok {
		log.Trace("no user in request context")
		return User{}, ErrNoUser
	}
	return u, nil
}

// CurrentId returns the id of the user stored in the context, or ErrNoUser.
func CurrentId(ctx context.Context) (int, error) {
	u, err := CurrentUser(ctx)
	if err != nil {
		return 0, err
	}
	return u.Id, nil
}
