package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemorySessionStoreLifecycle(t *testing.T) {
	store := NewMemorySessionStore(time.Hour, time.Hour)
	defer store.Close()
	ctx := context.Background()

	sessionID, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create session failed: %v", err)
	}
	if sessionID == "" {
		t.Fatalf("expected non-empty session id")
	}

	ok, err := store.Get(ctx, sessionID)
	if err != nil {
		t.Fatalf("get session failed: %v", err)
	}
	if !ok {
		t.Fatalf("expected session to be valid")
	}

	if err := store.Invalidate(ctx, sessionID); err != nil {
		t.Fatalf("invalidate failed: %v", err)
	}
	ok, err = store.Get(ctx, sessionID)
	if err != nil {
		t.Fatalf("get after invalidate failed: %v", err)
	}
	if ok {
		t.Fatalf("expected session to be gone after invalidate")
	}
}

func TestMemorySessionStoreExpiry(t *testing.T) {
	store := NewMemorySessionStore(30*time.Millisecond, time.Hour)
	defer store.Close()
	ctx := context.Background()

	sessionID, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create session failed: %v", err)
	}

	time.Sleep(60 * time.Millisecond)
	ok, err := store.Get(ctx, sessionID)
	if err != nil {
		t.Fatalf("get session failed: %v", err)
	}
	if ok {
		t.Fatalf("expected session to be expired")
	}
}

func TestMemorySessionStoreSlidingTTL(t *testing.T) {
	store := NewMemorySessionStore(80*time.Millisecond, time.Hour)
	defer store.Close()
	ctx := context.Background()

	sessionID, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create session failed: %v", err)
	}

	// 每次访问都应顺延有效期
	for i := 0; i < 3; i++ {
		time.Sleep(40 * time.Millisecond)
		ok, err := store.Get(ctx, sessionID)
		if err != nil {
			t.Fatalf("get session failed: %v", err)
		}
		if !ok {
			t.Fatalf("expected session to stay valid on touch %d", i)
		}
	}
}

func TestMemorySessionStoreEmptyID(t *testing.T) {
	store := NewMemorySessionStore(time.Hour, time.Hour)
	defer store.Close()
	ctx := context.Background()

	ok, err := store.Get(ctx, "  ")
	if err != nil {
		t.Fatalf("get empty session failed: %v", err)
	}
	if ok {
		t.Fatalf("empty session id must be invalid")
	}
	if err := store.Invalidate(ctx, ""); err != nil {
		t.Fatalf("invalidate empty session failed: %v", err)
	}
}
