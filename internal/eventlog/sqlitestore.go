package eventlog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sanyoog/retro-cam/internal/paths"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (or creates) a SQLite database at path and
// creates the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), paths.DirPerm); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Set PRAGMAs before any DDL.
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite pragma: %w", err)
		}
	}

	ddl := `
CREATE TABLE IF NOT EXISTS invocations (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp   TEXT    NOT NULL,
    repo        TEXT    NOT NULL DEFAULT '',
    branch      TEXT    NOT NULL DEFAULT '',
    tag         TEXT    NOT NULL DEFAULT '',
    run_id      INTEGER NOT NULL DEFAULT 0,
    outcome     TEXT    NOT NULL DEFAULT '',
    conclusion  TEXT    NOT NULL DEFAULT '',
    elapsed_ms  INTEGER NOT NULL DEFAULT 0,
    exit_code   INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_invocations_timestamp ON invocations(timestamp DESC);
`
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Record inserts e. A zero Time is stamped with the current time.
// Timestamps are stored in UTC so they sort as text.
func (s *SQLiteStore) Record(e Entry) error {
	ts := e.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := s.db.Exec(
		`INSERT INTO invocations (timestamp, repo, branch, tag, run_id, outcome, conclusion, elapsed_ms, exit_code)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ts.UTC().Format(time.RFC3339), e.Repo, e.Branch, e.Tag, e.RunID,
		e.Outcome, e.Conclusion, e.Elapsed.Milliseconds(), e.ExitCode,
	)
	return err
}

func (s *SQLiteStore) Entries(limit int) ([]Entry, error) {
	query := `SELECT id, timestamp, repo, branch, tag, run_id, outcome, conclusion, elapsed_ms, exit_code
		FROM invocations ORDER BY id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var tsStr string
		var elapsedMS int64
		if err := rows.Scan(&e.ID, &tsStr, &e.Repo, &e.Branch, &e.Tag, &e.RunID,
			&e.Outcome, &e.Conclusion, &elapsedMS, &e.ExitCode); err != nil {
			return nil, err
		}
		ts, err := time.Parse(time.RFC3339, tsStr)
		if err != nil {
			continue
		}
		e.Time = ts
		e.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) Clean(days int) (int, error) {
	cutoff := DayCutoff(days).UTC().Format(time.RFC3339)
	res, err := s.db.Exec(`DELETE FROM invocations WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *SQLiteStore) Clear() error {
	_, err := s.db.Exec(`DELETE FROM invocations`)
	return err
}

func (s *SQLiteStore) Path() string {
	return s.path
}
