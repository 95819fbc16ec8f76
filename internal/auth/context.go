package auth

import "context"

type ctxKey struct{}

// NewContext returns ctx carrying claims. Handlers mounted through gin.WrapH
// only see the request context, so Middleware stores claims there too.
func NewContext(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, claims)
}

func FromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ctxKey{}).(*Claims)
	return claims, ok && claims != nil
}
