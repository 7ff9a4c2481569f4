package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/isdelr/cms-be/internal/database"
	"github.com/isdelr/cms-be/internal/models"
	"github.com/isdelr/cms-be/internal/store"
)

func TestRunProvisionsTables(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cms.db")
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DATABASE_PATH", dbPath)
	t.Setenv("BACKUP_DIR", t.TempDir())

	// A second run finds every table present and still succeeds.
	for i := 0; i < 2; i++ {
		if code := run(); code != 0 {
			t.Fatalf("run #%d exit code %d want 0", i+1, code)
		}
	}

	db, err := database.New(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	tables, err := store.NewSQLiteStore(db).ListTables(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := []string{models.CommentsTable, models.PostsTable, models.TagsTable, models.UsersTable}
	if diff := cmp.Diff(want, tables); diff != "" {
		t.Fatalf("tables mismatch (-want +got):\n%s", diff)
	}
}

func TestRunInvalidConfig(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PORT", "not-a-port")
	if code := run(); code != 1 {
		t.Fatalf("exit code %d want 1", code)
	}
}
