//go:build integration
// +build integration

package test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quayside/marketauth/session"
)

func TestStoreInvalidateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store, _, cleanup := newIntegrationStore(t)
	defer cleanup()

	const accountID = int64(7)
	current := hashHex(5)
	if err := store.Put(ctx, accountID, current, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if err := store.Invalidate(ctx, accountID); err != nil {
		t.Fatalf("first Invalidate failed: %v", err)
	}
	if err := store.Invalidate(ctx, accountID); err != nil {
		t.Fatalf("second Invalidate failed: %v", err)
	}

	rec, err := store.GetActive(ctx, accountID)
	if err != nil {
		t.Fatalf("GetActive failed: %v", err)
	}
	if !rec.Invalidated() {
		t.Fatal("expected record to stay invalidated")
	}

	// Rotation against an invalidated record must fail even with the right hash.
	if err := store.Rotate(ctx, accountID, current, hashHex(6), time.Now().Add(time.Hour)); !errors.Is(err, session.ErrInvalidated) {
		t.Fatalf("expected ErrInvalidated, got %v", err)
	}
}

func TestStoreRotateWrongHashKeepsRecord(t *testing.T) {
	ctx := context.Background()
	store, _, cleanup := newIntegrationStore(t)
	defer cleanup()

	const accountID = int64(9)
	current := hashHex(7)
	wrong := hashHex(9)
	next := hashHex(8)
	if err := store.Put(ctx, accountID, current, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if err := store.Rotate(ctx, accountID, wrong, next, time.Now().Add(time.Hour)); !errors.Is(err, session.ErrHashMismatch) {
		t.Fatalf("expected ErrHashMismatch, got %v", err)
	}

	// Record survives the mismatch so the real holder can still rotate.
	if err := store.Rotate(ctx, accountID, current, next, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("rotate with correct hash failed: %v", err)
	}

	rec, err := store.GetActive(ctx, accountID)
	if err != nil {
		t.Fatalf("GetActive failed: %v", err)
	}
	if rec.TokenHash != next {
		t.Fatalf("expected stored hash %s, got %s", next, rec.TokenHash)
	}
}

func TestStorePurgeRemovesInvalidated(t *testing.T) {
	ctx := context.Background()
	store, _, cleanup := newIntegrationStore(t)
	defer cleanup()

	if err := store.Put(ctx, 1, hashHex(1), time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Put(ctx, 2, hashHex(2), time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Invalidate(ctx, 2); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}

	purged, err := store.Purge(ctx)
	if err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if purged != 1 {
		t.Fatalf("expected 1 purged record, got %d", purged)
	}

	if _, err := store.GetActive(ctx, 1); err != nil {
		t.Fatalf("live record must survive purge: %v", err)
	}
	if _, err := store.GetActive(ctx, 2); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after purge, got %v", err)
	}
}
