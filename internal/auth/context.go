package auth

import (
	"context"

	"github.com/shortlink/shortlink/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const tokenContextKey contextKey = "api_token"

// ContextWithToken attaches the authenticated token to ctx.
func ContextWithToken(ctx context.Context, token *model.ApiToken) context.Context {
	return context.WithValue(ctx, tokenContextKey, token)
}

// TokenFromContext returns the authenticated token, or nil if the
// request carried none (or auth middleware never ran).
func TokenFromContext(ctx context.Context) *model.ApiToken {
	token, _ := ctx.Value(tokenContextKey).(*model.ApiToken)
	return token
}
