package contextutils

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	requestIDKey  contextKey = "request_id"
	userIDKey     contextKey = "user_id"
	externalIDKey contextKey = "external_id"
)

// GetRequestID retrieves the request ID from the context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// WithRequestID adds the request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetUserID retrieves the authenticated user's ID from the context. The
// second return is false for anonymous requests.
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	if id, ok := ctx.Value(userIDKey).(uuid.UUID); ok && id != uuid.Nil {
		return id, true
	}
	return uuid.Nil, false
}

// WithUserID adds the authenticated user's ID to the context
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetExternalID retrieves the identity provider's subject for the verified
// token, set even before a local profile exists.
func GetExternalID(ctx context.Context) (string, bool) {
	if id, ok := ctx.Value(externalIDKey).(string); ok && id != "" {
		return id, true
	}
	return "", false
}

// WithExternalID adds the identity provider's subject to the context
func WithExternalID(ctx context.Context, externalID string) context.Context {
	return context.WithValue(ctx, externalIDKey, externalID)
}
