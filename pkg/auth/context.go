package auth

import "context"

type identityCtxKey struct{}

// WithIdentity stores the caller's identity on the context.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, identityCtxKey{}, identity)
}

// IdentityFromContext returns the caller's identity, or the anonymous guest when none was set.
func IdentityFromContext(ctx context.Context) Identity {
	if ctx == nil {
		return Anonymous()
	}
	if v, ok := ctx.Value(identityCtxKey{}).(Identity); ok {
		return v
	}
	return Anonymous()
}

type tokenIDCtxKey struct{}

// WithTokenID records the id of the identity token that authenticated the request.
func WithTokenID(ctx context.Context, tokenID string) context.Context {
	return context.WithValue(ctx, tokenIDCtxKey{}, tokenID)
}

// TokenIDFromContext returns the authenticating token id, if any.
func TokenIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(tokenIDCtxKey{}).(string)
	return v
}
