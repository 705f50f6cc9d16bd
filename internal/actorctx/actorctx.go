// Package actorctx carries the authenticated caller on a context.Context so
// code below the HTTP layer can attribute its work.
package actorctx

import (
	"context"

	"github.com/geocoder89/tenanthub/internal/access"
)

type ctxKey struct{}

func WithCaller(ctx context.Context, caller access.Caller) context.Context {
	return context.WithValue(ctx, ctxKey{}, caller)
}

// CallerFrom returns the caller stored on ctx, or an anonymous caller.
func CallerFrom(ctx context.Context) access.Caller {
	c, ok := ctx.Value(ctxKey{}).(access.Caller)
	if !ok {
		return access.Anonymous()
	}
	return c
}

func UserIDFrom(ctx context.Context) (string, bool) {
	c := CallerFrom(ctx)

	return c.UserID, c.Authenticated && c.UserID != ""
}
