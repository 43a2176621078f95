// ABOUTME: Authentication context for tracking identity through request handlers
// ABOUTME: Provides WithUser/CurrentUser for propagating identity via context

package auth

import (
	"context"
)

// userKey is the key type for storing the authenticated user ID.
type userKey struct{}

// WithUser returns a new context carrying the authenticated user ID.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

// CurrentUser returns the authenticated user ID, or "" when the request
// is anonymous.
func CurrentUser(ctx context.Context) string {
	id, _ := ctx.Value(userKey{}).(string)
	return id
}
