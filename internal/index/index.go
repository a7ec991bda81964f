package index

import (
	"time"

	"github.com/google/uuid"
)

// EntryIndex defines the interface for entry indexing operations.
type EntryIndex interface {
	UpsertEntry(row EntryRow, text string) error
	DeleteEntry(id uuid.UUID) error
	DeleteByPath(path string) (uuid.UUID, bool, error)
	GetEntry(id uuid.UUID) (*EntryRow, error)
	ListEntries(q ListQuery) ([]EntryRow, int, error)
	EntriesBetween(start, end time.Time) ([]EntryRow, error)
	Search(query string, limit int) ([]SearchResult, error)
	GetChecksum(path string) (string, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies EntryIndex at compile time.
var _ EntryIndex = (*DB)(nil)
