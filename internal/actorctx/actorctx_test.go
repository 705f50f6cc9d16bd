package actorctx_test

import (
	"context"
	"testing"

	"github.com/geocoder89/tenanthub/internal/access"
	"github.com/geocoder89/tenanthub/internal/actorctx"
	"github.com/geocoder89/tenanthub/internal/domain/user"
)

func TestCallerRoundTrip(t *testing.T) {
	ctx := context.Background()

	if _, ok := actorctx.UserIDFrom(ctx); ok {
		t.Fatal("empty context must not yield a user id")
	}

	caller := access.FromUser(user.User{ID: "u1", Role: user.RoleAdmin, IsActive: true})
	ctx = actorctx.WithCaller(ctx, caller)

	id, ok := actorctx.UserIDFrom(ctx)
	if !ok || id != "u1" {
		t.Fatalf("UserIDFrom = (%q, %v), want (u1, true)", id, ok)
	}

	if got := actorctx.CallerFrom(ctx); !got.IsAdmin() {
		t.Fatalf("expected admin caller, got %+v", got)
	}
}
