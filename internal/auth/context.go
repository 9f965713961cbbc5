package auth

import (
	"context"

	"github.com/google/uuid"
)

type contextKey struct{}

// AuthContext identifies the caller of a request.
type AuthContext struct {
	UserID uuid.UUID
	Name   string
	Token  string
}

func WithAuth(ctx context.Context, ac AuthContext) context.Context {
	return context.WithValue(ctx, contextKey{}, ac)
}

func FromContext(ctx context.Context) (AuthContext, bool) {
	ac, ok := ctx.Value(contextKey{}).(AuthContext)
	return ac, ok
}

// UserID returns the caller's id, or uuid.Nil when the context carries none.
func UserID(ctx context.Context) uuid.UUID {
	ac, ok := FromContext(ctx)
	if !ok {
		return uuid.Nil
	}
	return ac.UserID
}

func Token(ctx context.Context) string {
	ac, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return ac.Token
}
