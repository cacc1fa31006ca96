// Package store persists per-profile history and run results.
package store

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/amishk599/jobradar/internal/model"
)

// ErrCorruptHistory is returned when persisted history cannot be parsed.
// Callers must treat it as fatal: resetting would re-score every known job.
var ErrCorruptHistory = errors.New("history is corrupt")

// Backend names accepted by Open.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Entry is a history entry together with its job ID.
type Entry struct {
	ID string
	model.HistoryEntry
}

// History is a loaded history store. Records are held in memory until Save.
type History interface {
	model.History
	Entries() []Entry
	LastUpdated() *time.Time
	Close() error
}

// Open loads the history for profile from dataDir using the named backend.
func Open(backend, dataDir, profile string) (History, error) {
	switch backend {
	case BackendJSON, "":
		return OpenFileHistory(HistoryPath(dataDir, profile))
	case BackendSQLite:
		return OpenSQLiteHistory(filepath.Join(dataDir, profile, "history.db"))
	default:
		return nil, fmt.Errorf("unknown history backend %q", backend)
	}
}

// HistoryPath is where the JSON history for profile lives.
func HistoryPath(dataDir, profile string) string {
	return filepath.Join(dataDir, profile, "history.json")
}

// ResultsPath is where the results of the latest run for profile live.
func ResultsPath(dataDir, profile string) string {
	return filepath.Join(dataDir, profile, "results.json")
}

// index is the in-memory map shared by every backend. Jobs are keyed by their
// final job ID; leads maps the pre-extraction lead ID to that job ID so a lead
// can be recognised before its company is known.
type index struct {
	jobs    map[string]model.HistoryEntry
	leads   map[string]string
	pending []string
	now     func() time.Time
}

func newIndex() *index {
	return &index{
		jobs:  make(map[string]model.HistoryEntry),
		leads: make(map[string]string),
		now:   time.Now,
	}
}

func (x *index) load(id string, entry model.HistoryEntry) {
	x.jobs[id] = entry
	if entry.LeadID != "" {
		x.leads[entry.LeadID] = id
	}
}

func (x *index) Contains(id string) bool {
	if _, ok := x.jobs[id]; ok {
		return true
	}
	_, ok := x.leads[id]
	return ok
}

// Record adds entry under id. It returns false, leaving the existing entry
// untouched, if id is already known.
func (x *index) Record(id string, entry model.HistoryEntry) bool {
	if _, ok := x.jobs[id]; ok {
		return false
	}
	if entry.FirstSeen.IsZero() {
		entry.FirstSeen = x.now().UTC()
	}
	x.load(id, entry)
	x.pending = append(x.pending, id)
	return true
}

func (x *index) Len() int {
	return len(x.jobs)
}

// Entries returns all entries, most recently seen first.
func (x *index) Entries() []Entry {
	out := make([]Entry, 0, len(x.jobs))
	for id, e := range x.jobs {
		out = append(out, Entry{ID: id, HistoryEntry: e})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FirstSeen.Equal(out[j].FirstSeen) {
			return out[i].ID < out[j].ID
		}
		return out[i].FirstSeen.After(out[j].FirstSeen)
	})
	return out
}
