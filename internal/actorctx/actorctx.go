// Package actorctx carries the calling account id on a context.Context so
// code below the HTTP layer (logs, stores) can see who is acting.
package actorctx

import "context"

type ctxKey struct{}

func WithUserID(ctx context.Context, userID string) context.Context {
	if userID == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, userID)
}

func UserIDFrom(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxKey{}).(string)

	return v, ok && v != ""
}
