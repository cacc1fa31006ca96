package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/amishk599/jobradar/internal/model"
)

// SQLiteHistory keeps history in a SQLite database. Like FileHistory it loads
// everything up front and only writes on Save, in a single transaction.
type SQLiteHistory struct {
	*index
	db          *sql.DB
	lastUpdated *time.Time
}

// OpenSQLiteHistory opens (or creates) the database at dbPath and loads it.
func OpenSQLiteHistory(dbPath string) (*SQLiteHistory, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS history (
			job_id     TEXT PRIMARY KEY,
			lead_id    TEXT NOT NULL DEFAULT '',
			url        TEXT NOT NULL,
			title      TEXT NOT NULL,
			company    TEXT NOT NULL,
			first_seen DATETIME NOT NULL,
			fit_scores TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS history_meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: %s: %v", ErrCorruptHistory, dbPath, err)
		}
	}

	h := &SQLiteHistory{index: newIndex(), db: db}
	if err := h.read(); err != nil {
		db.Close()
		return nil, err
	}
	return h, nil
}

func (h *SQLiteHistory) read() error {
	rows, err := h.db.Query("SELECT job_id, lead_id, url, title, company, first_seen, fit_scores FROM history")
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, scores string
			e          model.HistoryEntry
		)
		if err := rows.Scan(&id, &e.LeadID, &e.URL, &e.Title, &e.Company, &e.FirstSeen, &scores); err != nil {
			return fmt.Errorf("%w: scanning row: %v", ErrCorruptHistory, err)
		}
		if err := json.Unmarshal([]byte(scores), &e.Scores); err != nil {
			return fmt.Errorf("%w: scores for %s: %v", ErrCorruptHistory, id, err)
		}
		h.index.load(id, e)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	var raw string
	err = h.db.QueryRow("SELECT value FROM history_meta WHERE key = 'last_updated'").Scan(&raw)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading history metadata: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return fmt.Errorf("%w: last_updated %q: %v", ErrCorruptHistory, raw, err)
	}
	h.lastUpdated = &t
	return nil
}

// LastUpdated returns when the history was last saved, or nil if never.
func (h *SQLiteHistory) LastUpdated() *time.Time {
	return h.lastUpdated
}

// Save inserts every entry recorded since the last save.
func (h *SQLiteHistory) Save() error {
	tx, err := h.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning history save: %w", err)
	}
	defer tx.Rollback()

	for _, id := range h.pending {
		e := h.jobs[id]
		scores, err := json.Marshal(e.Scores)
		if err != nil {
			return fmt.Errorf("encoding scores for %s: %w", id, err)
		}
		_, err = tx.Exec(
			"INSERT OR IGNORE INTO history (job_id, lead_id, url, title, company, first_seen, fit_scores) VALUES (?, ?, ?, ?, ?, ?, ?)",
			id, e.LeadID, e.URL, e.Title, e.Company, e.FirstSeen, string(scores),
		)
		if err != nil {
			return fmt.Errorf("saving history entry %s: %w", id, err)
		}
	}

	now := h.now().UTC()
	_, err = tx.Exec(
		"INSERT INTO history_meta (key, value) VALUES ('last_updated', ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("saving history metadata: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing history: %w", err)
	}

	h.lastUpdated = &now
	h.pending = nil
	return nil
}

// Close closes the underlying database connection.
func (h *SQLiteHistory) Close() error {
	return h.db.Close()
}
