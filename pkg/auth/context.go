package auth

import (
	"context"

	"github.com/lastforend/airdrop-ledger/pkg/user"
)

// Context keys for authentication data
type contextKey string

const (
	// ContextKeyUser is the context key for the authenticated user
	ContextKeyUser contextKey = "user"
	// ContextKeyAdminSubject is the context key for the admin token subject
	ContextKeyAdminSubject contextKey = "admin_subject"
)

// WithUser adds the authenticated user to the context
func WithUser(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, ContextKeyUser, u)
}

// UserFromContext retrieves the authenticated user from the context
func UserFromContext(ctx context.Context) (*user.User, bool) {
	u, ok := ctx.Value(ContextKeyUser).(*user.User)
	return u, ok
}

// WithAdminSubject adds the admin token subject to the context
func WithAdminSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, ContextKeyAdminSubject, subject)
}

// AdminSubjectFromContext retrieves the admin token subject from the context
func AdminSubjectFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(ContextKeyAdminSubject).(string)
	return subject, ok
}
