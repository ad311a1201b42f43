package models

import "context"

type identityCtxKey struct{}

// WithIdentity stores the resolved caller identity in ctx.
func WithIdentity(ctx context.Context, id *PublicIdentity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, id)
}

// IdentityFromContext returns the identity placed by the auth middleware, or nil.
func IdentityFromContext(ctx context.Context) *PublicIdentity {
	id, _ := ctx.Value(identityCtxKey{}).(*PublicIdentity)
	return id
}
