package storage

import (
	"testing"
	"time"
)

func TestBoltStoreMarksAndExpiresArticles(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		ArticleTTL:      1 * time.Second,
		CleanupInterval: 1 * time.Second,
	}

	storeRaw, err := openBolt(dir+"/published.db", opts)
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	defer store.Close()

	published, err := store.Published("key1")
	if err != nil || published {
		t.Fatalf("expected unpublished article, published=%v err=%v", published, err)
	}

	if err := store.MarkPublished("key1"); err != nil {
		t.Fatalf("MarkPublished: %v", err)
	}

	published, err = store.Published("key1")
	if err != nil || !published {
		t.Fatalf("expected article marked as published, got published=%v err=%v", published, err)
	}

	// Fast-forward cleanup cadence and trigger expiry.
	store.lastCleanup.Store(time.Now().Add(-2 * time.Second).Unix())
	time.Sleep(1100 * time.Millisecond)

	published, err = store.Published("key1")
	if err != nil {
		t.Fatalf("Published after expiry: %v", err)
	}
	if published {
		t.Fatalf("expected entry to expire and be removed")
	}
}

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.MarkPublished("x"); err != nil {
		t.Fatalf("noop store MarkPublished: %v", err)
	}
}

func TestNewStoreRejectsUnknownType(t *testing.T) {
	if _, err := NewStore("redis", "", Options{}); err == nil {
		t.Fatalf("expected error for unsupported storage type")
	}
}
