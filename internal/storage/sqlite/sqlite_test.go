package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alex-morrisonn/trolly/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	tempDir, err := os.MkdirTemp("", "trolly-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("Put then Get round-trips the body", func(t *testing.T) {
		created, err := store.Put(ctx, "groups", "g1", json.RawMessage(`{"name":"Flat"}`))
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if !created {
			t.Error("expected first Put to create")
		}

		body, err := store.Get(ctx, "groups", "g1")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if string(body) != `{"name":"Flat"}` {
			t.Errorf("body = %s, want {\"name\":\"Flat\"}", body)
		}
	})

	t.Run("Get missing document", func(t *testing.T) {
		_, err := store.Get(ctx, "groups", "missing")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("Put replaces in full", func(t *testing.T) {
		created, err := store.Put(ctx, "groups", "g1", json.RawMessage(`{"name":"Trip"}`))
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if created {
			t.Error("expected replacement, not creation")
		}

		body, err := store.Get(ctx, "groups", "g1")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if string(body) != `{"name":"Trip"}` {
			t.Errorf("body = %s, want {\"name\":\"Trip\"}", body)
		}
	})

	t.Run("Delete removes the document", func(t *testing.T) {
		if _, err := store.Put(ctx, "groups", "g2", json.RawMessage(`{}`)); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if err := store.Delete(ctx, "groups", "g2"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := store.Get(ctx, "groups", "g2"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
		if err := store.Delete(ctx, "groups", "g2"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("second delete err = %v, want ErrNotFound", err)
		}
	})

	t.Run("List returns all documents under the path", func(t *testing.T) {
		if _, err := store.Put(ctx, "groups/g1/items", "i1", json.RawMessage(`{"name":"Milk"}`)); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if _, err := store.Put(ctx, "groups/g1/items", "i2", json.RawMessage(`{"name":"Eggs"}`)); err != nil {
			t.Fatalf("Put failed: %v", err)
		}

		docs, err := store.List(ctx, "groups/g1/items")
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(docs) != 2 {
			t.Errorf("got %d documents, want 2", len(docs))
		}
	})
}

func TestSQLiteWatch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	events, cancel := store.Watch("lists")
	defer cancel()

	if _, err := store.Put(ctx, "lists", "a", json.RawMessage(`{"v":1}`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if _, err := store.Put(ctx, "lists", "a", json.RawMessage(`{"v":2}`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Delete(ctx, "lists", "a"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	want := []storage.EventType{storage.EventCreated, storage.EventUpdated, storage.EventDeleted}
	var lastSeq uint64
	for i, wantType := range want {
		select {
		case ev := <-events:
			if ev.Type != wantType {
				t.Errorf("event %d type = %s, want %s", i, ev.Type, wantType)
			}
			if ev.Seq <= lastSeq {
				t.Errorf("event %d seq = %d, not increasing past %d", i, ev.Seq, lastSeq)
			}
			lastSeq = ev.Seq
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for event %d", i)
		}
	}
}

func TestSQLiteChangelogIsAppendOnly(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Put(ctx, "lists", "a", json.RawMessage(`{"v":1}`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if _, err := store.Put(ctx, "lists", "a", json.RawMessage(`{"v":2}`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Delete(ctx, "lists", "a"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var count int
	err := store.db.QueryRow("SELECT COUNT(*) FROM changelog WHERE path = 'lists'").Scan(&count)
	if err != nil {
		t.Fatalf("changelog query failed: %v", err)
	}
	if count != 3 {
		t.Errorf("changelog rows = %d, want 3", count)
	}
}
