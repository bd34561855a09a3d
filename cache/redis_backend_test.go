package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisBackend(t *testing.T) (*RedisBackend, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	backend, err := NewRedisBackend(rdb, "gc")
	if err != nil {
		t.Fatalf("new redis backend: %v", err)
	}
	return backend, mr
}

func TestNewRedisBackendValidation(t *testing.T) {
	if _, err := NewRedisBackend(nil, "gc"); err == nil {
		t.Fatal("expected nil client to be rejected")
	}

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	if _, err := NewRedisBackend(rdb, "bad:prefix"); err == nil {
		t.Fatal("expected prefix with colon to be rejected")
	}
}

func TestRedisBackendRoundTrip(t *testing.T) {
	backend, _ := newRedisBackend(t)
	ctx := context.Background()

	if err := backend.Set(ctx, "meter:42:unit", []byte("17.5"), time.Hour); err != nil {
		t.Fatalf("set: %v", err)
	}

	value, err := backend.Get(ctx, "meter:42:unit")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(value) != "17.5" {
		t.Fatalf("get = %q, want 17.5", value)
	}

	if _, err := backend.Get(ctx, "meter:42:credit"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing key: err = %v, want ErrNotFound", err)
	}
}

func TestRedisBackendTTLExpiry(t *testing.T) {
	backend, mr := newRedisBackend(t)
	ctx := context.Background()

	if err := backend.Set(ctx, "meter:42:unit", []byte("17.5"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := backend.Get(ctx, "meter:42:unit"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired key: err = %v, want ErrNotFound", err)
	}
	// Get heals the indexes for the expired key.
	if n, err := backend.Len(ctx); err != nil || n != 0 {
		t.Fatalf("Len after heal = %d, %v; want 0", n, err)
	}
}

func TestRedisBackendDeletePrefix(t *testing.T) {
	backend, _ := newRedisBackend(t)
	ctx := context.Background()

	for _, key := range []string{"meter:42:unit", "meter:42:credit", "meter:421:unit", "meter:7:unit", "meter:42"} {
		if err := backend.Set(ctx, key, []byte("x"), time.Hour); err != nil {
			t.Fatalf("set %s: %v", key, err)
		}
	}

	removed, err := backend.DeletePrefix(ctx, "meter:42")
	if err != nil {
		t.Fatalf("delete prefix: %v", err)
	}
	// meter:42:unit, meter:42:credit, and the bare meter:42.
	if removed != 3 {
		t.Fatalf("removed %d, want 3", removed)
	}

	for key, want := range map[string]bool{
		"meter:42:unit":  false,
		"meter:421:unit": true,
		"meter:7:unit":   true,
	} {
		_, err := backend.Get(ctx, key)
		if present := err == nil; present != want {
			t.Errorf("after delete, Get(%s) present=%v, want %v", key, present, want)
		}
	}
}

func TestRedisBackendDeletePrefixEmpty(t *testing.T) {
	backend, _ := newRedisBackend(t)

	removed, err := backend.DeletePrefix(context.Background(), "nothing:here")
	if err != nil || removed != 0 {
		t.Fatalf("DeletePrefix on empty store = %d, %v; want 0, nil", removed, err)
	}
}

func TestRedisBackendCullBudget(t *testing.T) {
	backend, _ := newRedisBackend(t)
	ctx := context.Background()

	for _, key := range []string{"a:1", "a:2", "a:3", "a:4", "a:5"} {
		if err := backend.Set(ctx, key, []byte("x"), time.Hour); err != nil {
			t.Fatalf("set %s: %v", key, err)
		}
		// Distinct insertion scores.
		time.Sleep(time.Millisecond)
	}

	removed, err := backend.Cull(ctx, 3)
	if err != nil {
		t.Fatalf("cull: %v", err)
	}
	if removed != 2 {
		t.Fatalf("cull removed %d, want 2", removed)
	}
	if _, err := backend.Get(ctx, "a:1"); !errors.Is(err, ErrNotFound) {
		t.Fatal("oldest entry a:1 should have been culled")
	}
	if _, err := backend.Get(ctx, "a:5"); err != nil {
		t.Fatalf("newest entry a:5 must survive: %v", err)
	}
	if n, _ := backend.Len(ctx); n != 3 {
		t.Fatalf("Len after cull = %d, want 3", n)
	}
}

func TestRedisBackendCullHealsExpired(t *testing.T) {
	backend, mr := newRedisBackend(t)
	ctx := context.Background()

	backend.Set(ctx, "a:1", []byte("x"), time.Minute)
	backend.Set(ctx, "a:2", []byte("x"), time.Hour)

	mr.FastForward(2 * time.Minute)

	removed, err := backend.Cull(ctx, 0)
	if err != nil {
		t.Fatalf("cull: %v", err)
	}
	if removed != 1 {
		t.Fatalf("cull healed %d stale index entries, want 1", removed)
	}
	if n, _ := backend.Len(ctx); n != 1 {
		t.Fatalf("Len after heal = %d, want 1", n)
	}
}

func TestRedisBackendUnavailable(t *testing.T) {
	backend, mr := newRedisBackend(t)
	ctx := context.Background()

	mr.Close()

	if _, err := backend.Get(ctx, "a:1"); !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("get on dead redis = %v, want ErrBackendUnavailable", err)
	}
	if err := backend.Set(ctx, "a:1", []byte("x"), time.Hour); !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("set on dead redis = %v, want ErrBackendUnavailable", err)
	}
	if _, err := backend.DeletePrefix(ctx, "a"); !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("delete prefix on dead redis = %v, want ErrBackendUnavailable", err)
	}
}
