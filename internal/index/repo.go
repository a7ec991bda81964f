package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starford/diary/internal/apperr"
)

// Sort orders for ListEntries.
const (
	SortLatest = "latest"
	SortOldest = "oldest"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// LongDateLayout is the long date style used for date search labels.
const LongDateLayout = "January 2, 2006"

// EntryRow represents a row in the entries table.
type EntryRow struct {
	ID        uuid.UUID
	Path      string
	Title     string
	Date      time.Time
	DateLabel string
	Checksum  string
	Tags      []string
}

// ListQuery selects a page of entries.
type ListQuery struct {
	Sort   string // SortLatest (default) or SortOldest
	Query  string // case-insensitive match on title or long date label
	Limit  int
	Offset int
}

// SearchResult represents one search hit.
type SearchResult struct {
	ID      uuid.UUID `json:"id"`
	Title   string    `json:"title"`
	Date    time.Time `json:"date"`
	Snippet string    `json:"snippet"`
}

const rowColumns = `id, path, title, date, date_label, checksum, tags`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRow(s rowScanner) (EntryRow, error) {
	var (
		r              EntryRow
		id, date, tags string
	)
	if err := s.Scan(&id, &r.Path, &r.Title, &date, &r.DateLabel, &r.Checksum, &tags); err != nil {
		return r, err
	}
	var err error
	if r.ID, err = uuid.Parse(id); err != nil {
		return r, fmt.Errorf("index: bad id %q: %w", id, err)
	}
	if r.Date, err = time.Parse(time.RFC3339Nano, date); err != nil {
		return r, fmt.Errorf("index: bad date %q: %w", date, err)
	}
	if err = json.Unmarshal([]byte(tags), &r.Tags); err != nil {
		return r, fmt.Errorf("index: bad tags %q: %w", tags, err)
	}
	if r.Tags == nil {
		r.Tags = []string{}
	}
	return r, nil
}

func scanRows(rows *sql.Rows) ([]EntryRow, error) {
	defer rows.Close()
	out := []EntryRow{}
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// UpsertEntry inserts or replaces an entry and its FTS row within a transaction.
// text is the searchable body text.
func (db *DB) UpsertEntry(r EntryRow, text string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if r.Tags == nil {
		r.Tags = []string{}
	}
	tagsJSON, _ := json.Marshal(r.Tags)
	searchKey := strings.ToLower(r.Title + "\n" + r.DateLabel)

	// A different entry may still own the path (file rewritten with a new id).
	if _, err := tx.Exec(`DELETE FROM entries WHERE path = ? AND id <> ?`, r.Path, r.ID.String()); err != nil {
		return fmt.Errorf("index: clear path: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO entries (id, path, title, date, ts, date_label, search_key, checksum, tags, body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			path       = excluded.path,
			title      = excluded.title,
			date       = excluded.date,
			ts         = excluded.ts,
			date_label = excluded.date_label,
			search_key = excluded.search_key,
			checksum   = excluded.checksum,
			tags       = excluded.tags,
			body       = excluded.body
	`, r.ID.String(), r.Path, r.Title, r.Date.Format(time.RFC3339Nano), r.Date.UnixMilli(),
		r.DateLabel, searchKey, r.Checksum, string(tagsJSON), text)
	if err != nil {
		return fmt.Errorf("index: upsert entry: %w", err)
	}

	if err := ftsUpsert(tx, r.ID.String(), r.Title, r.DateLabel, text, r.Tags); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteEntry removes an entry and its FTS row.
func (db *DB) DeleteEntry(id uuid.UUID) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, id.String())
	if _, err := tx.Exec(`DELETE FROM entries WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("index: delete entry: %w", err)
	}
	return tx.Commit()
}

// DeleteByPath removes the entry stored at path. It reports the removed id
// and whether any entry was indexed there.
func (db *DB) DeleteByPath(path string) (uuid.UUID, bool, error) {
	var raw string
	err := db.conn.QueryRow(`SELECT id FROM entries WHERE path = ?`, path).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("index: lookup path: %w", err)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("index: bad id %q: %w", raw, err)
	}
	if err := db.DeleteEntry(id); err != nil {
		return uuid.Nil, false, err
	}
	return id, true, nil
}

// GetEntry returns the indexed row for id, or apperr.ErrNotFound.
func (db *DB) GetEntry(id uuid.UUID) (*EntryRow, error) {
	row := db.conn.QueryRow(`SELECT `+rowColumns+` FROM entries WHERE id = ?`, id.String())
	r, err := scanRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("index: get entry: %w", err)
	}
	return &r, nil
}

// ListEntries returns a page of entries and the total number of matches.
func (db *DB) ListEntries(q ListQuery) ([]EntryRow, int, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset := max(q.Offset, 0)

	order := "ts DESC, id DESC"
	if q.Sort == SortOldest {
		order = "ts ASC, id ASC"
	}

	where, args := "", []any{}
	if needle := strings.TrimSpace(q.Query); needle != "" {
		where = `WHERE search_key LIKE ? ESCAPE '\'`
		args = append(args, "%"+escapeLike(strings.ToLower(needle))+"%")
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM entries `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count entries: %w", err)
	}

	rows, err := db.conn.Query(
		`SELECT `+rowColumns+` FROM entries `+where+` ORDER BY `+order+` LIMIT ? OFFSET ?`,
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list entries: %w", err)
	}
	out, err := scanRows(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list entries: %w", err)
	}
	return out, total, nil
}

// EntriesBetween returns entries dated in [start, end), oldest first.
func (db *DB) EntriesBetween(start, end time.Time) ([]EntryRow, error) {
	rows, err := db.conn.Query(
		`SELECT `+rowColumns+` FROM entries WHERE ts >= ? AND ts < ? ORDER BY ts ASC, id ASC`,
		start.UnixMilli(), end.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("index: entries between: %w", err)
	}
	out, err := scanRows(rows)
	if err != nil {
		return nil, fmt.Errorf("index: entries between: %w", err)
	}
	return out, nil
}

// AllChecksums returns path → checksum for every indexed entry.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM entries`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func searchLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	return min(limit, maxLimit)
}

// GetChecksum returns the stored checksum for the entry at path, or "" if
// nothing is indexed there.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM entries WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}
