package session

import (
	"context"
	"testing"
	"time"
)

func testCodec(t *testing.T) *Codec {
	t.Helper()
	codec, err := NewCodec("test-secret")
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	return codec
}

func TestMemoryCreateResolve(t *testing.T) {
	store := NewMemoryStore(testCodec(t), time.Hour)
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

func TestMemoryResolveUnknownToken(t *testing.T) {
	codec := testCodec(t)
	store := NewMemoryStore(codec, time.Hour)
	ctx := context.Background()

	// Never-issued but well-signed token.
	token, err := codec.Issue()
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, ok := store.Resolve(ctx, token); ok {
		t.Fatal("resolved a token that was never created")
	}

	if _, ok := store.Resolve(ctx, "not-a-token"); ok {
		t.Fatal("resolved a malformed token")
	}
}

func TestMemoryTTLExpiry(t *testing.T) {
	store := NewMemoryStore(testCodec(t), time.Minute)
	ctx := context.Background()

	token, err := store.Create(ctx, 7)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	store.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	if _, ok := store.Resolve(ctx, token); ok {
		t.Fatal("resolved a token past its TTL")
	}
}

func TestMemoryRevokeIdempotent(t *testing.T) {
	store := NewMemoryStore(testCodec(t), time.Hour)
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

func TestCodecRejectsTampering(t *testing.T) {
	codec := testCodec(t)

	token, err := codec.Issue()
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !codec.Verify(token) {
		t.Fatal("fresh token failed verification")
	}

	other, err := NewCodec("other-secret")
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	if other.Verify(token) {
		t.Fatal("token verified under a different secret")
	}
	if codec.Verify(token + "x") {
		t.Fatal("tampered token verified")
	}
}
