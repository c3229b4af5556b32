package http

import (
	"context"

	"github.com/zouhourab1996-stack/neural-post-ai/internal/auth"
)

type contextKey string

const (
	requestIDContextKey contextKey = "neuralpost/request-id"
	claimsContextKey    contextKey = "neuralpost/trigger-claims"
)

// RequestIDFromContext extracts the request identifier from the context when available.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if value, ok := ctx.Value(requestIDContextKey).(string); ok {
		return value
	}
	return ""
}

// ClaimsFromContext returns the verified trigger token, or nil on open routes.
func ClaimsFromContext(ctx context.Context) *auth.Claims {
	if ctx == nil {
		return nil
	}
	claims, _ := ctx.Value(claimsContextKey).(*auth.Claims)
	return claims
}

func withClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}
