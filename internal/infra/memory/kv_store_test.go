package memory

import (
	"context"
	"testing"
)

func TestKeyValueStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewKeyValueStore()

	if _, ok, _ := store.Get(ctx, "missing"); ok {
		t.Fatalf("expected missing key")
	}

	if err := store.Set(ctx, "k", "v1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(ctx, "k", "v2"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	value, ok, err := store.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("expected value, ok=%v err=%v", ok, err)
	}
	if value != "v2" {
		t.Fatalf("expected latest write, got %q", value)
	}
}
