package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/starford/diary/internal/checksum"
	"github.com/starford/diary/internal/entryfile"
	"github.com/starford/diary/internal/storage"
)

// Event kinds passed to EventCallback.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

const reconcileDelay = 200 * time.Millisecond

// EventCallback is called after a watcher-driven index change.
type EventCallback func(kind string, id uuid.UUID)

// Watcher keeps the index in step with entry files edited outside the API.
type Watcher struct {
	db        *DB
	store     storage.Provider
	vaultRoot string
	loc       *time.Location
	logger    *slog.Logger
	cb        EventCallback
}

// NewWatcher creates a watcher for the entries directory under vaultRoot.
// cb may be nil.
func NewWatcher(db *DB, store storage.Provider, vaultRoot string, loc *time.Location, logger *slog.Logger, cb EventCallback) *Watcher {
	return &Watcher{db: db, store: store, vaultRoot: vaultRoot, loc: loc, logger: logger, cb: cb}
}

// Run processes file change events until ctx is cancelled.
//
// New directories created at runtime are added to the watch list. Rename
// events trigger a debounced reconciliation pass that removes index rows
// whose files no longer exist and indexes files that are not yet indexed.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	root := filepath.Join(w.vaultRoot, entryfile.Dir)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return err
	}
	if err := addDirsRecursive(fw, root); err != nil {
		return err
	}

	w.logger.Info("watcher: started", slog.String("root", root))

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(reconcileDelay)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(reconcileDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			w.logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			w.reconcile()

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handle(fw, ev, scheduleReconcile)

		case watchErr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func (w *Watcher) handle(fw *fsnotify.Watcher, ev fsnotify.Event, scheduleReconcile func()) {
	absPath := ev.Name

	if ev.Op&fsnotify.Create != 0 {
		if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
			if addErr := addDirsRecursive(fw, absPath); addErr != nil {
				w.logger.Warn("watcher: add new dir failed",
					slog.String("path", absPath),
					slog.String("error", addErr.Error()))
			}
			w.indexDir(absPath)
			return
		}
	}

	if !isEntryFile(absPath) {
		return
	}
	rel, relErr := filepath.Rel(w.vaultRoot, absPath)
	if relErr != nil {
		return
	}
	rel = filepath.ToSlash(rel)

	switch {
	case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
		kind := EventUpdated
		if ev.Op&fsnotify.Create != 0 {
			kind = EventCreated
		}
		w.indexPath(rel, kind)

	case ev.Op&fsnotify.Remove != 0:
		w.deletePath(rel)

	case ev.Op&fsnotify.Rename != 0:
		// fsnotify reports Rename on the old path only; the new path
		// arrives as a Create if it stays in a watched directory.
		w.deletePath(rel)
		scheduleReconcile()
	}
}

// indexPath re-indexes rel when its content differs from the indexed copy.
func (w *Watcher) indexPath(rel, kind string) {
	data, err := w.store.Read(rel)
	if err != nil {
		w.logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	if cs, _ := w.db.GetChecksum(rel); cs == checksum.Sum(data) {
		return
	}
	id, err := IndexFile(w.db, w.loc, rel, data)
	if err != nil {
		w.logger.Warn("watcher: index failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	w.logger.Debug("watcher: indexed", slog.String("path", rel), slog.String("op", kind))
	w.emit(kind, id)
}

func (w *Watcher) deletePath(rel string) {
	id, ok, err := w.db.DeleteByPath(rel)
	if err != nil {
		w.logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	if ok {
		w.logger.Debug("watcher: deleted", slog.String("path", rel))
		w.emit(EventDeleted, id)
	}
}

// reconcile does a lightweight sync using batch lookups.
func (w *Watcher) reconcile() {
	checksums, err := w.db.AllChecksums()
	if err != nil {
		w.logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}
	metas, err := w.store.List(entryfile.Dir)
	if err != nil {
		w.logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string]string, len(metas))
	for _, m := range metas {
		disk[m.Path] = m.Checksum
	}

	for p := range checksums {
		if _, ok := disk[p]; !ok {
			w.deletePath(p)
		}
	}
	for p, cs := range disk {
		if checksums[p] != cs {
			w.indexPath(p, EventCreated)
		}
	}
}

// indexDir indexes entry files found in a newly created directory.
func (w *Watcher) indexDir(dirPath string) {
	_ = filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !isEntryFile(path) {
			return nil
		}
		if rel, relErr := filepath.Rel(w.vaultRoot, path); relErr == nil {
			w.indexPath(filepath.ToSlash(rel), EventCreated)
		}
		return nil
	})
}

func (w *Watcher) emit(kind string, id uuid.UUID) {
	if w.cb != nil {
		w.cb(kind, id)
	}
}

func isEntryFile(path string) bool {
	name := filepath.Base(path)
	return strings.HasSuffix(name, entryfile.Ext) && !strings.HasPrefix(name, ".")
}

// addDirsRecursive adds root and all its non-hidden subdirectories to the watcher.
func addDirsRecursive(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return fw.Add(path)
	})
}
