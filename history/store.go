// Package history persists completed analyses to SQLite so the service can
// show past results and feed exports without re-rendering pages. Recording
// is best-effort from the request path: a failing history store must never
// fail an analysis response.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lannv1101/css-checker/coverage"
)

// Schema for the analyses table. Applied by Open.
const Schema = `
CREATE TABLE IF NOT EXISTS analyses (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	url TEXT NOT NULL,
	total_bytes INTEGER NOT NULL,
	used_bytes INTEGER NOT NULL,
	usage_percent REAL NOT NULL,
	files_json TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_analyses_url ON analyses(url);
CREATE INDEX IF NOT EXISTS idx_analyses_ts ON analyses(created_at);
`

// Record is one stored analysis.
type Record struct {
	ID           int64                 `json:"id"`
	URL          string                `json:"url"`
	TotalBytes   int                   `json:"total_bytes"`
	UsedBytes    int                   `json:"used_bytes"`
	UsagePercent float64               `json:"usage_percent"`
	Files        []coverage.FileResult `json:"files"`
	CreatedAt    time.Time             `json:"created_at"`
}

// Store persists analysis results.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore wraps an already opened database. Most callers use Open instead.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Record inserts one completed analysis.
func (s *Store) Record(ctx context.Context, url string, res coverage.Result) error {
	files, err := json.Marshal(res.Files)
	if err != nil {
		return fmt.Errorf("history: marshal files: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analyses (url, total_bytes, used_bytes, usage_percent, files_json, created_at)
		VALUES (?,?,?,?,?,?)`,
		url, res.TotalBytes, res.UsedBytes, res.UsagePercent, string(files), s.now().Unix())
	if err != nil {
		return fmt.Errorf("history: insert: %w", err)
	}
	return nil
}

// Recent returns the latest analyses, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, url, total_bytes, used_bytes, usage_percent, files_json, created_at
		FROM analyses ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var files string
		var created int64
		if err := rows.Scan(&r.ID, &r.URL, &r.TotalBytes, &r.UsedBytes,
			&r.UsagePercent, &files, &created); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		if err := json.Unmarshal([]byte(files), &r.Files); err != nil {
			return nil, fmt.Errorf("history: unmarshal files for id %d: %w", r.ID, err)
		}
		r.CreatedAt = time.Unix(created, 0)
		out = append(out, r)
	}
	return out, rows.Err()
}

// LatestFor returns the newest analysis for a URL, or ok=false when none
// was ever recorded.
func (s *Store) LatestFor(ctx context.Context, url string) (Record, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, url, total_bytes, used_bytes, usage_percent, files_json, created_at
		FROM analyses WHERE url = ? ORDER BY id DESC LIMIT 1`, url)

	var r Record
	var files string
	var created int64
	err := row.Scan(&r.ID, &r.URL, &r.TotalBytes, &r.UsedBytes,
		&r.UsagePercent, &files, &created)
	if err == sql.ErrNoRows {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("history: scan: %w", err)
	}
	if err := json.Unmarshal([]byte(files), &r.Files); err != nil {
		return Record{}, false, fmt.Errorf("history: unmarshal files for id %d: %w", r.ID, err)
	}
	r.CreatedAt = time.Unix(created, 0)
	return r, true, nil
}
