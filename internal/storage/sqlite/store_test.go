package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/alecgard/fiveplanner/internal/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "planner.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestLoadSaveRemove(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if _, err := s.Load(ctx, storage.KeyPlayers); !errors.Is(err, storage.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}

	if err := s.Save(ctx, storage.KeyPlayers, []byte(`[{"id":"1"}]`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Save(ctx, storage.KeyPlayers, []byte(`[{"id":"2"}]`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	got, err := s.Load(ctx, storage.KeyPlayers)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(got) != `[{"id":"2"}]` {
		t.Errorf("got %s, want the overwritten document", got)
	}

	if err := s.Remove(ctx, storage.KeyPlayers); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := s.Load(ctx, storage.KeyPlayers); !errors.Is(err, storage.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound after remove, got %v", err)
	}
}

func TestCollectionOverSQLite(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	type group struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	c, err := storage.OpenCollection[group](ctx, s, storage.KeyGroups, storage.PolicyRollback)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Replace(ctx, []group{{ID: "1", Name: "Réguliers"}}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	reopened, err := storage.OpenCollection[group](ctx, s, storage.KeyGroups, storage.PolicyRollback)
	if err != nil {
		t.Fatal(err)
	}
	if items := reopened.Items(); len(items) != 1 || items[0].Name != "Réguliers" {
		t.Errorf("items = %+v", items)
	}
}
