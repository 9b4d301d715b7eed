package auth

import "context"

// SetClaimsForTesting injects session claims into a context to simulate an
// authenticated request. Test helper only.
func SetClaimsForTesting(ctx context.Context, claims *SessionClaims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}
