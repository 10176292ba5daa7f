// Package store keeps a local log of generated engagement letters.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"thgletter/internal/logging"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Letter is one generated engagement letter.
type Letter struct {
	ID          string
	FileName    string
	ClientName  string
	Address     string
	ParcelID    string
	Fee         string
	SavedPath   string
	GeneratedBy string
	GeneratedAt time.Time
	EmailedTo   string
	EmailedAt   time.Time
}

// History is the sqlite-backed letter log.
type History struct {
	db     *sql.DB
	dbPath string
	mu     sync.Mutex
}

// OpenHistory creates or opens the history database at path.
func OpenHistory(path string) (*History, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.Get(logging.CategoryHistory).Debug("failed to set busy_timeout: %v", err)
	}

	h := &History{db: db, dbPath: path}
	if err := h.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return h, nil
}

// Close closes the database.
func (h *History) Close() error {
	return h.db.Close()
}

// Path returns the database file path.
func (h *History) Path() string {
	return h.dbPath
}

func (h *History) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS letters (
		id TEXT PRIMARY KEY,
		file_name TEXT NOT NULL,
		client_name TEXT NOT NULL,
		address TEXT NOT NULL,
		parcel_id TEXT NOT NULL,
		fee TEXT NOT NULL,
		saved_path TEXT NOT NULL,
		generated_by TEXT NOT NULL DEFAULT '',
		generated_at INTEGER NOT NULL,
		emailed_to TEXT NOT NULL DEFAULT '',
		emailed_at INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_letters_generated ON letters(generated_at);
	CREATE INDEX IF NOT EXISTS idx_letters_file ON letters(file_name);
	`
	_, err := h.db.Exec(schema)
	return err
}

// Record stores a newly generated letter and returns it with its id set.
func (h *History) Record(ctx context.Context, l Letter) (Letter, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.GeneratedAt.IsZero() {
		l.GeneratedAt = time.Now()
	}

	_, err := h.db.ExecContext(ctx, `
		INSERT INTO letters (id, file_name, client_name, address, parcel_id, fee, saved_path, generated_by, generated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.FileName, l.ClientName, l.Address, l.ParcelID, l.Fee, l.SavedPath, l.GeneratedBy, l.GeneratedAt.UnixMilli(),
	)
	if err != nil {
		return Letter{}, fmt.Errorf("failed to record letter: %w", err)
	}
	logging.History("recorded %s for %s", l.FileName, l.ClientName)
	return l, nil
}

// MarkEmailed stamps the most recent letter with fileName as sent to email.
// It returns false when no such letter is recorded.
func (h *History) MarkEmailed(ctx context.Context, fileName, email string, at time.Time) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	res, err := h.db.ExecContext(ctx, `
		UPDATE letters SET emailed_to = ?, emailed_at = ?
		WHERE id = (SELECT id FROM letters WHERE file_name = ? ORDER BY generated_at DESC LIMIT 1)`,
		email, at.UnixMilli(), fileName,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark letter emailed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Recent returns up to limit letters, newest first.
func (h *History) Recent(ctx context.Context, limit int) ([]Letter, error) {
	if limit <= 0 {
		limit = 20
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	rows, err := h.db.QueryContext(ctx, `
		SELECT id, file_name, client_name, address, parcel_id, fee, saved_path, generated_by, generated_at, emailed_to, emailed_at
		FROM letters ORDER BY generated_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query letters: %w", err)
	}
	defer rows.Close()

	var out []Letter
	for rows.Next() {
		var l Letter
		var genMs, mailMs int64
		if err := rows.Scan(&l.ID, &l.FileName, &l.ClientName, &l.Address, &l.ParcelID, &l.Fee,
			&l.SavedPath, &l.GeneratedBy, &genMs, &l.EmailedTo, &mailMs); err != nil {
			return nil, fmt.Errorf("failed to scan letter: %w", err)
		}
		l.GeneratedAt = time.UnixMilli(genMs)
		if mailMs > 0 {
			l.EmailedAt = time.UnixMilli(mailMs)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
