package httputil

import (
	"context"
	"net/http"
)

// Context key type to avoid collisions
type contextKey string

const (
	userIDKey     contextKey = "userID"
	authFailedKey contextKey = "authFailed"
)

// WithUserID adds userID to the request context
func WithUserID(r *http.Request, userID string) *http.Request {
	ctx := context.WithValue(r.Context(), userIDKey, userID)
	return r.WithContext(ctx)
}

// GetUserID retrieves userID from context, returns empty string for guests
func GetUserID(r *http.Request) string {
	userID, _ := r.Context().Value(userIDKey).(string)
	return userID
}

// WithAuthFailed marks a request whose bearer token did not verify
func WithAuthFailed(r *http.Request) *http.Request {
	ctx := context.WithValue(r.Context(), authFailedKey, true)
	return r.WithContext(ctx)
}

// AuthFailed reports whether the request presented a token that did not verify
func AuthFailed(r *http.Request) bool {
	failed, _ := r.Context().Value(authFailedKey).(bool)
	return failed
}
