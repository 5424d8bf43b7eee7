package context

import (
	"context"
	"slices"
)

// UserContext identifies the caller of an API request.
// Tokens are issued by an external service; only the claims are kept here.
type UserContext struct {
	UserID string
	Email  string
	Roles  []string
}

// HasRole reports whether the caller carries role.
func (u *UserContext) HasRole(role string) bool {
	return slices.Contains(u.Roles, role)
}

type userContextKey struct{}

func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

func GetUser(ctx context.Context) *UserContext {
	if v, ok := ctx.Value(userContextKey{}).(*UserContext); ok {
		return v
	}
	return nil
}

// GetUserID returns the caller id, or "" for anonymous requests.
// Idempotency keys are scoped by it.
func GetUserID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.UserID
	}
	return ""
}
