//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; full-text search uses LIKE on entries.body.
	return nil
}

func ftsUpsert(_ *sql.Tx, _, _, _, _ string, _ []string) error {
	// Body is already stored in the entries table.
	return nil
}

func ftsDelete(_ *sql.Tx, _ string) {}

func ftsReset(_ *sql.Tx) error { return nil }

// Search performs a LIKE-based search (fallback when FTS5 is not compiled in).
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	like := "%" + escapeLike(query) + "%"
	needle := "%" + escapeLike(strings.ToLower(query)) + "%"
	rows, err := db.conn.Query(`
		SELECT id, title, date, substr(body, 1, 200)
		FROM entries
		WHERE search_key LIKE ? ESCAPE '\'
		   OR body LIKE ? ESCAPE '\'
		   OR tags LIKE ? ESCAPE '\'
		ORDER BY ts DESC
		LIMIT ?
	`, needle, like, like, searchLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	out := []SearchResult{}
	for rows.Next() {
		var (
			r        SearchResult
			id, date string
		)
		if err := rows.Scan(&id, &r.Title, &date, &r.Snippet); err != nil {
			return nil, err
		}
		r.ID, _ = uuid.Parse(id)
		r.Date, _ = time.Parse(time.RFC3339Nano, date)
		out = append(out, r)
	}
	return out, rows.Err()
}
