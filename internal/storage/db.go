package storage

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"booklister/internal"
)

// DB is the local run ledger. It is an audit trail only: the processed/
// relocation of consumed inputs remains the sole state that gates
// reprocessing.
type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  kind TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  detailsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_runs_kind ON runs(kind);

CREATE TABLE IF NOT EXISTS uploads (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  folder TEXT NOT NULL,
  filename TEXT NOT NULL,
  url TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(folder, filename)
);
`
	_, err := d.conn.Exec(schema)
	return err
}

// InsertRun records one batch run: kind is the subcommand family
// ("queue-append", "batch-workbook", "identify", "upload"), counts the
// per-outcome totals, details any per-item breakdown worth keeping.
func (d *DB) InsertRun(kind string, counts map[string]int, details any) error {
	countsJSON, _ := json.Marshal(counts)
	detailsJSON, _ := json.Marshal(details)
	_, err := d.conn.Exec(
		`INSERT INTO runs (kind, countsJson, detailsJson) VALUES (?, ?, ?)`,
		kind, string(countsJSON), string(detailsJSON),
	)
	return err
}

// ListRuns returns the most recent ledger entries, newest first.
func (d *DB) ListRuns(limit int) ([]internal.RunRecord, error) {
	rows, err := d.conn.Query(`
SELECT id, kind, countsJson, detailsJson, createdAt
FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.RunRecord
	for rows.Next() {
		var rec internal.RunRecord
		var countsJSON string
		if err := rows.Scan(&rec.ID, &rec.Kind, &countsJSON, &rec.Details, &rec.CreatedAt); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(countsJSON), &rec.Counts)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// RecordUpload remembers a file's public URL so re-runs can report what is
// already hosted.
func (d *DB) RecordUpload(folder, filename, url string) error {
	_, err := d.conn.Exec(`
INSERT INTO uploads (folder, filename, url) VALUES (?, ?, ?)
ON CONFLICT(folder, filename) DO UPDATE SET url = excluded.url, createdAt = CURRENT_TIMESTAMP
`, folder, filename, url)
	return err
}

// UploadedURLs returns filename→URL for one image folder.
func (d *DB) UploadedURLs(folder string) (map[string]string, error) {
	rows, err := d.conn.Query(`SELECT filename, url FROM uploads WHERE folder = ?`, folder)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var filename, url string
		if err := rows.Scan(&filename, &url); err != nil {
			return nil, err
		}
		out[filename] = url
	}
	return out, rows.Err()
}
