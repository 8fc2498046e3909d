package actorctx

import "context"

type ctxKey struct{}

// WithUserID tags a request context with the authenticated actor, so log
// lines emitted deep in the stack can say who acted.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

func UserIDFrom(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxKey{}).(string)

	return v, ok && v != ""
}
