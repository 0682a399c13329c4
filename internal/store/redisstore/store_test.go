package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return New(client, time.Hour), mr
}

func TestSessionTokenRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.SetSessionToken(ctx, 42, "tok-abc"); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := store.GetSessionToken(ctx, 42)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "tok-abc" {
		t.Fatalf("token = %q", got)
	}
}

func TestGetSessionTokenMiss(t *testing.T) {
	store, _ := newTestStore(t)

	got, err := store.GetSessionToken(context.Background(), 7)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty token on miss, got %q", got)
	}
}

func TestDeleteSessionToken(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.SetSessionToken(ctx, 9, "tok"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.DeleteSessionToken(ctx, 9); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err := store.GetSessionToken(ctx, 9)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty token after delete, got %q", got)
	}
}

func TestSessionTokenExpires(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if err := store.SetSessionToken(ctx, 3, "tok"); err != nil {
		t.Fatalf("set: %v", err)
	}
	mr.FastForward(2 * time.Hour)

	got, err := store.GetSessionToken(ctx, 3)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "" {
		t.Fatalf("expected token to expire, got %q", got)
	}
}
