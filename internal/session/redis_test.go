package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStoreTest(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return NewRedisStore(rdb, testCodec(t), ttl), mr
}

func TestRedisCreateResolve(t *testing.T) {
	store, _ := newRedisStoreTest(t, time.Hour)
	ctx := context.Background()

	token, err := store.Create(ctx, 42)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	userID, ok := store.Resolve(ctx, token)
	if !ok || userID != 42 {
		t.Fatalf("resolve = (%d, %v), want (42, true)", userID, ok)
	}
}

func TestRedisTTLExpiry(t *testing.T) {
	store, mr := newRedisStoreTest(t, time.Minute)
	ctx := context.Background()

	token, err := store.Create(ctx, 7)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, ok := store.Resolve(ctx, token); ok {
		t.Fatal("resolved a token past its TTL")
	}
}

func TestRedisRevokeIdempotent(t *testing.T) {
	store, _ := newRedisStoreTest(t, time.Hour)
	ctx := context.Background()

	token, err := store.Create(ctx, 9)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := store.Revoke(ctx, token); err != nil {
		t.Fatalf("first revoke: %v", err)
	}
	if err := store.Revoke(ctx, token); err != nil {
		t.Fatalf("second revoke: %v", err)
	}
	if _, ok := store.Resolve(ctx, token); ok {
		t.Fatal("resolved a revoked token")
	}
}

func TestRedisUnreachableDegradesToUnauthenticated(t *testing.T) {
	store, mr := newRedisStoreTest(t, time.Hour)
	ctx := context.Background()

	token, err := store.Create(ctx, 5)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	mr.Close()

	if _, ok := store.Resolve(ctx, token); ok {
		t.Fatal("resolve succeeded with the backing store down")
	}
}

func TestRedisResolveSkipsLookupForUnsignedTokens(t *testing.T) {
	store, mr := newRedisStoreTest(t, time.Hour)
	ctx := context.Background()

	mr.Close()

	// A malformed token must be rejected by signature alone, no store call.
	if _, ok := store.Resolve(ctx, "garbage"); ok {
		t.Fatal("resolved a malformed token")
	}
}
