package auth

import (
	"context"
	"fmt"
)

// UserClaims is the resolved identity attached to the request context after
// the token has been verified against the credential store.
type UserClaims struct {
	UserID string
	Email  string
	Name   string
}

// Context keys
type contextKey string

const userClaimsKey contextKey = "user_claims"

// withUserClaims adds user claims to the context
func withUserClaims(ctx context.Context, claims *UserClaims) context.Context {
	return context.WithValue(ctx, userClaimsKey, claims)
}

// WithUserClaims is the exported version for testing purposes
func WithUserClaims(ctx context.Context, claims *UserClaims) context.Context {
	return withUserClaims(ctx, claims)
}

// GetUserClaims extracts user claims from context
func GetUserClaims(ctx context.Context) (*UserClaims, bool) {
	claims, ok := ctx.Value(userClaimsKey).(*UserClaims)
	return claims, ok
}

// GetUserID is a convenience function to get the user ID from context
func GetUserID(ctx context.Context) (string, bool) {
	if claims, ok := GetUserClaims(ctx); ok {
		return claims.UserID, true
	}
	return "", false
}

// RequireAuth extracts user claims from context or returns an
// unauthenticated error.
func RequireAuth(ctx context.Context) (*UserClaims, error) {
	claims, ok := GetUserClaims(ctx)
	if !ok {
		return nil, fmt.Errorf("user not authenticated")
	}
	return claims, nil
}
