package actorctx

import (
	"context"
	"testing"
)

func TestUserIDRoundTrip(t *testing.T) {
	ctx := WithUserID(context.Background(), "u-1")

	got, ok := UserIDFrom(ctx)
	if !ok || got != "u-1" {
		t.Fatalf("UserIDFrom() = %q, %v", got, ok)
	}
}

func TestEmptyUserIDIsNotStored(t *testing.T) {
	ctx := WithUserID(context.Background(), "")

	if _, ok := UserIDFrom(ctx); ok {
		t.Fatalf("expected no user id")
	}
}
