package redis

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestKeyValueStoreRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewKeyValueStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	if _, ok, err := store.Get(ctx, "pancasila_progress"); ok || err != nil {
		t.Fatalf("expected clean miss, ok=%v err=%v", ok, err)
	}

	if err := store.Set(ctx, "pancasila_progress", `{"1":{"lastPage":2,"maxPage":5,"quizScore":null}}`); err != nil {
		t.Fatalf("set: %v", err)
	}

	value, ok, err := store.Get(ctx, "pancasila_progress")
	if err != nil || !ok {
		t.Fatalf("expected hit, ok=%v err=%v", ok, err)
	}
	if value == "" {
		t.Fatalf("expected stored blob")
	}

	// Progress entries must not expire.
	if mr.TTL("pancasila_progress") != 0 {
		t.Fatalf("expected no TTL on progress key, got %v", mr.TTL("pancasila_progress"))
	}
}
