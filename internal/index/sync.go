package index

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/starford/diary/internal/checksum"
	"github.com/starford/diary/internal/entryfile"
	"github.com/starford/diary/internal/storage"
)

const metaTimezone = "timezone"

// RowFor builds the index row for a decoded entry file stored at path.
func RowFor(path string, doc *entryfile.Document, sum string, loc *time.Location) EntryRow {
	return EntryRow{
		ID:        doc.Entry.ID,
		Path:      path,
		Title:     doc.Entry.Title,
		Date:      doc.Entry.Date,
		DateLabel: doc.Entry.Date.In(loc).Format(LongDateLayout),
		Checksum:  sum,
		Tags:      doc.Tags,
	}
}

// IndexFile decodes data and upserts it into the DB. It returns the entry id.
func IndexFile(db *DB, loc *time.Location, path string, data []byte) (uuid.UUID, error) {
	doc, err := entryfile.Decode(data)
	if err != nil {
		return uuid.Nil, fmt.Errorf("index: %s: %w", path, err)
	}
	if err := db.UpsertEntry(RowFor(path, doc, checksum.Sum(data), loc), doc.Text); err != nil {
		return uuid.Nil, err
	}
	return doc.Entry.ID, nil
}

// Sync walks the vault's entry directory and brings the index up to date:
//   - new/changed files are decoded and upserted
//   - files removed from disk are deleted from the index
//
// Date labels depend on the calendar location, so a location change since
// the last sync rebuilds the whole index.
func Sync(db *DB, store storage.Provider, loc *time.Location, logger *slog.Logger) error {
	prevZone, err := db.Meta(metaTimezone)
	if err != nil {
		return err
	}
	if prevZone != loc.String() {
		if prevZone != "" {
			logger.Info("sync: timezone changed, rebuilding index",
				slog.String("from", prevZone), slog.String("to", loc.String()))
		}
		if err := db.Reset(); err != nil {
			return err
		}
	}

	metas, err := store.List(entryfile.Dir)
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if _, err := IndexFile(db, loc, m.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	for p := range checksums {
		if _, ok := disk[p]; ok {
			continue
		}
		if _, _, err := db.DeleteByPath(p); err != nil {
			logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: removed stale", slog.String("path", p))
		}
	}

	return db.SetMeta(metaTimezone, loc.String())
}
