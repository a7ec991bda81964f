// Package journal coordinates entry storage, the search index and the
// calendar engine.
package journal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/diary/internal/apperr"
	"github.com/starford/diary/internal/calendar"
	"github.com/starford/diary/internal/checksum"
	"github.com/starford/diary/internal/entryfile"
	"github.com/starford/diary/internal/index"
	"github.com/starford/diary/internal/models"
	"github.com/starford/diary/internal/storage"
)

// Detail is the full representation of an entry.
type Detail struct {
	ID       uuid.UUID `json:"id"`
	Date     time.Time `json:"date"`
	Title    string    `json:"title"`
	Body     []byte    `json:"-"`
	Tags     []string  `json:"tags"`
	Path     string    `json:"path"`
	Checksum string    `json:"checksum"`
}

// Summary is a lightweight item in list and calendar responses.
type Summary struct {
	ID       uuid.UUID `json:"id"`
	Date     time.Time `json:"date"`
	Title    string    `json:"title"`
	Tags     []string  `json:"tags"`
	Checksum string    `json:"checksum"`
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used for default dates and "today".
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithNotifier registers a callback run after every successful write.
func WithNotifier(cb index.EventCallback) Option {
	return func(s *Service) {
		s.notify = cb
	}
}

// Service coordinates storage and index operations.
type Service struct {
	store  storage.Provider
	db     *index.DB
	cal    *calendar.Calendar
	now    func() time.Time
	notify index.EventCallback

	// mu serialises writes so a move and its re-index are never interleaved
	// with another write to the same entry.
	mu sync.Mutex
}

// NewService creates a new journal service.
func NewService(store storage.Provider, db *index.DB, cal *calendar.Calendar, opts ...Option) *Service {
	s := &Service{store: store, db: db, cal: cal, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Calendar returns the calendar the service lays out months with.
func (s *Service) Calendar() *calendar.Calendar { return s.cal }

// Create stores a new entry. A zero input ID gets a fresh UUID and a nil
// input date means now. Reusing an existing ID fails with
// apperr.ErrAlreadyExists.
func (s *Service) Create(_ context.Context, in EntryInput) (*Detail, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	e := models.Entry{ID: in.ID, Title: in.Title, Body: in.Body}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.Date = s.now()
	if in.Date != nil {
		e.Date = *in.Date
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.GetEntry(e.ID); err == nil {
		return nil, apperr.ErrAlreadyExists
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	return s.write(e, "", index.EventCreated)
}

// Save replaces the entry with e's ID, or appends e when no such entry
// exists. The file moves when the new date falls in another month.
func (s *Service) Save(_ context.Context, e models.Entry) (*Detail, error) {
	if e.ID == uuid.Nil {
		return nil, fmt.Errorf("%w: id is required", apperr.ErrInvalidInput)
	}
	if err := validateDate(e.Date); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	row, err := s.db.GetEntry(e.ID)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return s.write(e, "", index.EventCreated)
	case err != nil:
		return nil, err
	}
	return s.write(e, row.Path, index.EventUpdated)
}

// Get returns the entry with id, or apperr.ErrNotFound.
func (s *Service) Get(_ context.Context, id uuid.UUID) (*Detail, error) {
	row, err := s.db.GetEntry(id)
	if err != nil {
		return nil, err
	}
	data, err := s.store.Read(row.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return s.detail(row.Path, data)
}

// Update rewrites the entry with id. A non-empty ifMatch must match the
// current file checksum, otherwise apperr.ErrConflict is returned. A nil
// input date keeps the entry's date.
func (s *Service) Update(_ context.Context, id uuid.UUID, in EntryInput, ifMatch string) (*Detail, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	row, err := s.db.GetEntry(id)
	if err != nil {
		return nil, err
	}
	existing, err := s.store.Read(row.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if ifMatch != "" && !checksum.Match(ifMatch, checksum.Sum(existing)) {
		return nil, apperr.ErrConflict
	}

	e := models.Entry{ID: id, Date: row.Date, Title: in.Title, Body: in.Body}
	if in.Date != nil {
		e.Date = *in.Date
	}
	return s.write(e, row.Path, index.EventUpdated)
}

// Delete removes the entry with id from storage and index.
func (s *Service) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, err := s.db.GetEntry(id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(row.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := s.db.DeleteEntry(id); err != nil {
		return err
	}
	s.emit(index.EventDeleted, id)
	return nil
}

// List returns a page of entry summaries and the total number of matches.
func (s *Service) List(_ context.Context, opts ListOptions) ([]Summary, int, error) {
	if err := opts.Validate(); err != nil {
		return nil, 0, err
	}
	rows, total, err := s.db.ListEntries(index.ListQuery{
		Sort:   opts.Sort,
		Query:  opts.Query,
		Limit:  opts.Limit,
		Offset: opts.Offset,
	})
	if err != nil {
		return nil, 0, err
	}
	items := make([]Summary, len(rows))
	for i, r := range rows {
		items[i] = summaryOf(r)
	}
	return items, total, nil
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// Navigate returns the first day of the month delta months from ref.
func (s *Service) Navigate(ref time.Time, delta int) time.Time {
	return s.cal.ChangeMonth(ref, delta)
}

// Today returns the start of the current day in the calendar's location.
func (s *Service) Today() time.Time {
	return s.cal.StartOfDay(s.now())
}

// write encodes e, stores it at its dated path and re-indexes it. oldPath is
// the entry's current file, if any; it is removed once the new file is in
// place and indexed. Callers hold s.mu.
func (s *Service) write(e models.Entry, oldPath, kind string) (*Detail, error) {
	data, err := entryfile.Encode(e)
	if err != nil {
		return nil, err
	}
	p := entryfile.Path(e.ID, e.Date, s.cal.Location())
	if err := s.store.Write(p, data); err != nil {
		return nil, err
	}
	if _, err := index.IndexFile(s.db, s.cal.Location(), p, data); err != nil {
		return nil, err
	}
	if oldPath != "" && oldPath != p {
		if err := s.store.Delete(oldPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("journal: remove moved entry: %w", err)
		}
	}
	s.emit(kind, e.ID)
	return s.detail(p, data)
}

func (s *Service) detail(path string, data []byte) (*Detail, error) {
	doc, err := entryfile.Decode(data)
	if err != nil {
		return nil, err
	}
	return &Detail{
		ID:       doc.Entry.ID,
		Date:     doc.Entry.Date.In(s.cal.Location()),
		Title:    doc.Entry.Title,
		Body:     doc.Entry.Body,
		Tags:     nonNilSlice(doc.Tags),
		Path:     path,
		Checksum: checksum.Sum(data),
	}, nil
}

func (s *Service) emit(kind string, id uuid.UUID) {
	if s.notify != nil {
		s.notify(kind, id)
	}
}

func summaryOf(r index.EntryRow) Summary {
	return Summary{
		ID:       r.ID,
		Date:     r.Date,
		Title:    r.Title,
		Tags:     nonNilSlice(r.Tags),
		Checksum: r.Checksum,
	}
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
