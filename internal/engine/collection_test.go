package engine

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/alex-morrisonn/trolly/internal/storage/memstore"
)

// note is the document type used by engine tests.
type note struct {
	ID   string `json:"-"`
	Name string `json:"name"`
	Rank int    `json:"rank"`
}

func newNotes(t *testing.T) (*Hub, *Collection[note]) {
	t.Helper()
	store := memstore.New()
	t.Cleanup(func() { store.Close() })
	hub := NewHub(store)
	t.Cleanup(hub.Close)

	coll := NewCollection(hub, "notes",
		WithIdentify(func(n *note, id string) { n.ID = id }),
		WithValidate(func(n *note) error {
			if n.Name == "" {
				return &ValidationError{Detail: "note name is required"}
			}
			return nil
		}),
	)
	return hub, coll
}

func TestCollectionLastWriteWins(t *testing.T) {
	_, coll := newNotes(t)
	ctx := context.Background()

	id, err := coll.Add(ctx, note{Name: "first"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated id")
	}

	if err := coll.Update(ctx, id, note{Name: "second"}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if err := coll.Update(ctx, id, note{Name: "third", Rank: 3}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := coll.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name != "third" || got.Rank != 3 {
		t.Errorf("got %+v, want the last written document", got)
	}
	if got.ID != id {
		t.Errorf("decoded id = %q, want %q", got.ID, id)
	}

	if err := coll.Remove(ctx, id); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := coll.Get(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Remove err = %v, want ErrNotFound", err)
	}
}

func TestCollectionMissingDocuments(t *testing.T) {
	_, coll := newNotes(t)
	ctx := context.Background()

	if err := coll.Update(ctx, "ghost", note{Name: "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update err = %v, want ErrNotFound", err)
	}
	if err := coll.Remove(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Remove err = %v, want ErrNotFound", err)
	}
}

func TestCollectionValidation(t *testing.T) {
	_, coll := newNotes(t)
	ctx := context.Background()

	if _, err := coll.Add(ctx, note{}); !errors.Is(err, ErrInvalid) {
		t.Errorf("Add err = %v, want ErrInvalid", err)
	}

	id, err := coll.Add(ctx, note{Name: "ok"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := coll.Update(ctx, id, note{}); !errors.Is(err, ErrInvalid) {
		t.Errorf("Update err = %v, want ErrInvalid", err)
	}
}

func TestCollectionSnapshotOrdered(t *testing.T) {
	_, coll := newNotes(t)
	ctx := context.Background()

	for _, n := range []note{{Name: "c", Rank: 3}, {Name: "a", Rank: 1}, {Name: "b", Rank: 2}} {
		if _, err := coll.Add(ctx, n); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	snap, err := coll.Snapshot(ctx, nil, func(a, b note) bool { return a.Rank < b.Rank })
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(snap) != 3 {
		t.Fatalf("got %d notes, want 3", len(snap))
	}
	for i, want := range []string{"a", "b", "c"} {
		if snap[i].Name != want {
			t.Errorf("snap[%d].Name = %q, want %q", i, snap[i].Name, want)
		}
	}
}

func TestCollectionSnapshotFiltered(t *testing.T) {
	_, coll := newNotes(t)
	ctx := context.Background()

	for _, n := range []note{{Name: "keep", Rank: 1}, {Name: "drop", Rank: 2}} {
		if _, err := coll.Add(ctx, n); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	snap, err := coll.Snapshot(ctx, func(n note) bool { return n.Name == "keep" }, nil)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(snap) != 1 || snap[0].Name != "keep" {
		t.Errorf("snap = %+v, want only the kept note", snap)
	}
}

// A stored document that no longer decodes must surface as a
// ValidationError, not silently vanish from results.
func TestCollectionMalformedDocumentSurfaces(t *testing.T) {
	hub, coll := newNotes(t)
	ctx := context.Background()

	if _, err := coll.Add(ctx, note{Name: "fine"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := hub.Store().Put(ctx, "notes", "broken", json.RawMessage(`{"rank":"not a number"}`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	_, err := coll.Snapshot(ctx, nil, nil)
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("Snapshot err = %v, want ErrInvalid", err)
	}

	if _, err := coll.Get(ctx, "broken"); !errors.Is(err, ErrInvalid) {
		t.Errorf("Get err = %v, want ErrInvalid", err)
	}
}
