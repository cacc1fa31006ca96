package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/amishk599/jobradar/internal/model"
)

func newTestSQLite(t *testing.T) (*SQLiteHistory, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "history.db")
	h, err := OpenSQLiteHistory(dbPath)
	if err != nil {
		t.Fatalf("OpenSQLiteHistory: %v", err)
	}
	t.Cleanup(func() { h.Close() })
	return h, dbPath
}

func TestSQLiteHistory_EmptyOnCreate(t *testing.T) {
	h, _ := newTestSQLite(t)
	if h.Len() != 0 {
		t.Errorf("Len() = %d, want 0", h.Len())
	}
	if h.LastUpdated() != nil {
		t.Errorf("LastUpdated() = %v, want nil", h.LastUpdated())
	}
}

func TestSQLiteHistory_NothingWrittenBeforeSave(t *testing.T) {
	h, dbPath := newTestSQLite(t)
	h.Record("job-1", model.HistoryEntry{URL: "u1", Scores: map[string]int{"ai": 1}})
	h.Close()

	reopened, err := OpenSQLiteHistory(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if reopened.Len() != 0 {
		t.Errorf("Len() after unsaved record = %d, want 0", reopened.Len())
	}
}

func TestSQLiteHistory_SaveThenReload(t *testing.T) {
	h, dbPath := newTestSQLite(t)
	first := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

	h.Record("job-1", model.HistoryEntry{URL: "u1", Title: "Eng", Company: "Acme", LeadID: "lead-1", FirstSeen: first, Scores: map[string]int{"ai": 64}})
	if h.Record("job-1", model.HistoryEntry{URL: "u1", Title: "Other"}) {
		t.Error("second Record of the same id returned true")
	}
	if err := h.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	h.Close()

	reopened, err := OpenSQLiteHistory(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	if !reopened.Contains("job-1") || !reopened.Contains("lead-1") {
		t.Fatal("expected job and lead IDs to be known after reload")
	}
	e := reopened.Entries()[0]
	if e.Title != "Eng" || e.Scores["ai"] != 64 {
		t.Errorf("entry = %+v, want title Eng and ai score 64", e)
	}
	if !e.FirstSeen.Equal(first) {
		t.Errorf("FirstSeen = %v, want %v", e.FirstSeen, first)
	}
	if reopened.LastUpdated() == nil {
		t.Error("LastUpdated() = nil after save")
	}
}

func TestSQLiteHistory_NotADatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	if err := os.WriteFile(dbPath, []byte("this is not sqlite at all, just some bytes padding the header out"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenSQLiteHistory(dbPath); err == nil {
		t.Fatal("expected error opening a non-database file")
	}
}

func TestOpen_SelectsBackend(t *testing.T) {
	dir := t.TempDir()

	h, err := Open(BackendSQLite, dir, "default")
	if err != nil {
		t.Fatalf("Open sqlite: %v", err)
	}
	h.Close()
	if _, err := os.Stat(filepath.Join(dir, "default", "history.db")); err != nil {
		t.Errorf("sqlite database not created: %v", err)
	}

	if _, err := Open("redis", dir, "default"); err == nil {
		t.Error("expected error for unknown backend")
	}
}
