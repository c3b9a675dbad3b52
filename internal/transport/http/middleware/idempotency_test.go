package middleware

import (
	"context"
	"testing"
)

func TestRequestHashDeterministic(t *testing.T) {
	a := RequestHash([]byte("u-1|finalized|c-1"))
	b := RequestHash([]byte("u-1|finalized|c-1"))
	if a != b {
		t.Fatalf("hash not stable: %q vs %q", a, b)
	}
	if c := RequestHash([]byte("u-1|finalized|c-2")); c == a {
		t.Fatal("different payloads hashed identically")
	}
	if len(a) != 64 {
		t.Fatalf("hash length = %d, want 64 hex chars", len(a))
	}
}

// A nil store must behave as if the mechanism is disabled, so handlers can
// call Check/Save unconditionally.
func TestIdempotencyStoreNilSafe(t *testing.T) {
	var store *IdempotencyStore

	stored, found, err := store.Check(context.Background(), "o1", "u1", "goals.bulk_status", "k1", "h1")
	if err != nil || found || stored != nil {
		t.Fatalf("Check on nil store = (%v, %v, %v)", stored, found, err)
	}
	if err := store.Save(context.Background(), "o1", "u1", "goals.bulk_status", "k1", "h1", nil); err != nil {
		t.Fatalf("Save on nil store: %v", err)
	}
}
