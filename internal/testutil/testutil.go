// Package testutil provides shared test helpers for setting up vaults and databases.
package testutil

import (
	"os"
	"testing"
	"time"

	"github.com/starford/diary/internal/calendar"
	"github.com/starford/diary/internal/index"
	"github.com/starford/diary/internal/journal"
	"github.com/starford/diary/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "diary-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestVault creates a temporary vault directory with a storage.Provider.
func TestVault(t *testing.T) (string, storage.Provider) {
	t.Helper()
	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	return vaultDir, store
}

// FixedClock returns a clock that always reports now.
func FixedClock(now time.Time) func() time.Time {
	return func() time.Time { return now }
}

// TestJournal wires a journal service over a fresh vault and database.
// The calendar uses UTC with Sunday-first weeks.
func TestJournal(t *testing.T, opts ...journal.Option) (*journal.Service, storage.Provider, *index.DB) {
	t.Helper()
	_, store := TestVault(t)
	db := TestDB(t)
	return journal.NewService(store, db, calendar.New(time.UTC), opts...), store, db
}
