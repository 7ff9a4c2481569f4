// Package storetest opens throwaway provisioned stores for tests.
package storetest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/isdelr/cms-be/internal/database"
	"github.com/isdelr/cms-be/internal/models"
	"github.com/isdelr/cms-be/internal/store"
)

// New returns a SQLite-backed store in t's temp dir with every application table created.
func New(t testing.TB) *store.SQLiteStore {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "cms.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	st := store.NewSQLiteStore(db)
	for _, spec := range models.Tables() {
		if err := st.CreateTable(context.Background(), spec); err != nil {
			t.Fatalf("create %s: %v", spec.Name, err)
		}
	}
	return st
}
