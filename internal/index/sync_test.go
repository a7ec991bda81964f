package index

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSync_IndexesAndRemovesStale(t *testing.T) {
	vaultDir, store, db := watcherTestEnv(t)
	keep := writeEntryFile(t, vaultDir, "entries/2024/03/keep.md", "Keep")
	gone := writeEntryFile(t, vaultDir, "entries/2024/03/gone.md", "Gone")
	_ = os.WriteFile(filepath.Join(vaultDir, "entries", "broken.md"), []byte("no frontmatter"), 0o644)

	if err := Sync(db, store, time.UTC, quietLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if _, err := db.GetEntry(keep.ID); err != nil {
		t.Errorf("keep not indexed: %v", err)
	}
	if _, err := db.GetEntry(gone.ID); err != nil {
		t.Errorf("gone not indexed: %v", err)
	}

	_ = os.Remove(filepath.Join(vaultDir, "entries", "2024", "03", "gone.md"))
	if err := Sync(db, store, time.UTC, quietLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if _, err := db.GetEntry(gone.ID); err == nil {
		t.Error("stale entry should be removed")
	}
}

func TestSync_TimezoneChangeRebuildsLabels(t *testing.T) {
	vaultDir, store, db := watcherTestEnv(t)
	// 09:00 UTC on March 5 is March 4 in Honolulu.
	e := writeEntryFile(t, vaultDir, "entries/tz.md", "TZ")

	_ = Sync(db, store, time.UTC, quietLogger())
	got, _ := db.GetEntry(e.ID)
	if got.DateLabel != "March 5, 2024" {
		t.Fatalf("label = %q", got.DateLabel)
	}

	hnl := time.FixedZone("HST", -10*3600)
	if err := Sync(db, store, hnl, quietLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	got, _ = db.GetEntry(e.ID)
	if got.DateLabel != "March 4, 2024" {
		t.Errorf("label after timezone change = %q", got.DateLabel)
	}
	if v, _ := db.Meta(metaTimezone); v != "HST" {
		t.Errorf("meta timezone = %q", v)
	}
}
