package storage

import (
	"context"
	"testing"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if err := s.Set(ctx, KeySession, []byte(`{"username":"alice"}`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok, err := s.Get(ctx, KeySession)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("expected key to exist")
	}
	if string(got) != `{"username":"alice"}` {
		t.Fatalf("unexpected value: %s", got)
	}
}

func TestMemoryStoreMissingKey(t *testing.T) {
	_, ok, err := NewMemoryStore().Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("missing key must not error: %v", err)
	}
	if ok {
		t.Fatal("missing key reported as present")
	}
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	if err := s.Set(ctx, KeySigner, []byte("abc")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, _, _ := s.Get(ctx, KeySigner)
	got[0] = 'x'

	again, _, _ := s.Get(ctx, KeySigner)
	if string(again) != "abc" {
		t.Fatal("Get exposed internal buffer")
	}
}

func TestClearSessionSweepsAllKeys(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	for _, key := range SessionKeys() {
		if err := s.Set(ctx, key, []byte("v")); err != nil {
			t.Fatalf("Set %s failed: %v", key, err)
		}
	}

	if err := ClearSession(ctx, s); err != nil {
		t.Fatalf("ClearSession failed: %v", err)
	}

	if s.Len() != 0 {
		t.Fatalf("expected empty store, %d keys remain", s.Len())
	}
}
