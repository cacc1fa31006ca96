package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/amishk599/jobradar/internal/model"
)

type historyFile struct {
	Jobs        map[string]model.HistoryEntry `json:"jobs"`
	LastUpdated *time.Time                    `json:"last_updated"`
}

// FileHistory is a JSON history file guarded by an exclusive lock file for
// as long as it is open.
type FileHistory struct {
	*index
	path        string
	lock        *flock.Flock
	lastUpdated *time.Time
}

// OpenFileHistory locks and loads the history at path. A missing file yields
// an empty history; an unparseable one yields ErrCorruptHistory.
func OpenFileHistory(path string) (*FileHistory, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("locking history %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("history %s is locked by another run", path)
	}

	h := &FileHistory{index: newIndex(), path: path, lock: lock}
	if err := h.read(); err != nil {
		lock.Unlock()
		return nil, err
	}
	return h, nil
}

func (h *FileHistory) read() error {
	data, err := os.ReadFile(h.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading history %s: %w", h.path, err)
	}

	var f historyFile
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorruptHistory, h.path, err)
	}
	for id, e := range f.Jobs {
		h.index.load(id, e)
	}
	h.lastUpdated = f.LastUpdated
	return nil
}

// LastUpdated returns when the history was last saved, or nil if never.
func (h *FileHistory) LastUpdated() *time.Time {
	return h.lastUpdated
}

// Save writes the whole history with a fresh last_updated timestamp. The file
// is replaced atomically so a crash never leaves a partial history behind.
func (h *FileHistory) Save() error {
	now := h.now().UTC()
	data, err := json.MarshalIndent(historyFile{Jobs: h.jobs, LastUpdated: &now}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}
	if err := writeFileAtomic(h.path, data); err != nil {
		return fmt.Errorf("saving history: %w", err)
	}
	h.lastUpdated = &now
	h.pending = nil
	return nil
}

// Close releases the lock.
func (h *FileHistory) Close() error {
	return h.lock.Unlock()
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
