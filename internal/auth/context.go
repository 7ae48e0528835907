package auth

import "context"

// contextKey is unexported so nothing outside this package can collide with
// or forge the authenticated identity.
type contextKey struct{}

var userIDKey contextKey

// WithUserID returns a context carrying the authenticated user's id.
func WithUserID(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserID extracts the authenticated user's id from the request context.
func UserID(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(userIDKey).(uint)
	return id, ok
}
