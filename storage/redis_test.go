package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(rdb, "sk", ttl)

	return store, mr, func() {
		_ = rdb.Close()
		mr.Close()
	}
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _, done := newRedisStore(t, 0)
	defer done()

	if err := store.Set(ctx, KeySession, []byte(`{"address":"0x1"}`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok, err := store.Get(ctx, KeySession)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok || string(got) != `{"address":"0x1"}` {
		t.Fatalf("unexpected value: ok=%v value=%s", ok, got)
	}
}

func TestRedisStoreMissingKey(t *testing.T) {
	store, _, done := newRedisStore(t, 0)
	defer done()

	_, ok, err := store.Get(context.Background(), KeySession)
	if err != nil {
		t.Fatalf("missing key must not error: %v", err)
	}
	if ok {
		t.Fatal("missing key reported as present")
	}
}

func TestRedisStoreTTLExpiry(t *testing.T) {
	ctx := context.Background()
	store, mr, done := newRedisStore(t, time.Minute)
	defer done()

	if err := store.Set(ctx, KeySigner, []byte("k")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	_, ok, err := store.Get(ctx, KeySigner)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Fatal("expired key still present")
	}
}

func TestRedisStoreClearSession(t *testing.T) {
	ctx := context.Background()
	store, mr, done := newRedisStore(t, 0)
	defer done()

	for _, key := range SessionKeys() {
		if err := store.Set(ctx, key, []byte("v")); err != nil {
			t.Fatalf("Set %s failed: %v", key, err)
		}
	}

	if err := ClearSession(ctx, store); err != nil {
		t.Fatalf("ClearSession failed: %v", err)
	}

	for _, key := range SessionKeys() {
		if mr.Exists("sk:" + key) {
			t.Fatalf("key %s survived ClearSession", key)
		}
	}
}

func TestRedisStoreUnavailable(t *testing.T) {
	store, mr, done := newRedisStore(t, 0)
	done()
	_ = mr

	_, _, err := store.Get(context.Background(), KeySession)
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}
