package postgres

import (
	"context"
	"io/fs"
	"os"
	"strings"
	"testing"

	"github.com/alecgard/fiveplanner/internal/storage"
	"github.com/alecgard/fiveplanner/internal/storage/postgres/migrations"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(migrations.FS, ".")
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}
	if len(ups) == 0 {
		t.Fatal("expected at least one up migration")
	}
	for v := range ups {
		if !downs[v] {
			t.Errorf("migration %s has no down file", v)
		}
	}
}

func TestCreateKVMigration(t *testing.T) {
	data, err := fs.ReadFile(migrations.FS, "000001_create_kv.up.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	if !strings.Contains(string(data), "CREATE TABLE IF NOT EXISTS kv") {
		t.Errorf("unexpected migration body: %s", data)
	}
}

// TestStoreAgainstDatabase runs only when FIVEPLANNER_TEST_DATABASE_URL points
// at a disposable database.
func TestStoreAgainstDatabase(t *testing.T) {
	url := os.Getenv("FIVEPLANNER_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("FIVEPLANNER_TEST_DATABASE_URL not set")
	}
	if err := MigrateUp(url); err != nil {
		t.Fatalf("migrate up: %v", err)
	}

	ctx := context.Background()
	s, err := Connect(ctx, url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer s.Close()

	if err := s.Save(ctx, storage.KeyGroups, []byte(`[{"id":"1"}]`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Load(ctx, storage.KeyGroups)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !strings.Contains(string(got), `"id"`) {
		t.Errorf("unexpected document %s", got)
	}
	if err := s.Remove(ctx, storage.KeyGroups); err != nil {
		t.Fatalf("remove: %v", err)
	}
}
