// Package auditlog is an optional, opt-in SQLite-backed append log of
// sync runs. It is purely additive observability; nothing in the sync
// or staleness path ever consults it.
package auditlog

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"orchestra/internal/logging"
	"orchestra/internal/orcherr"
	"orchestra/internal/writer"
)

// Log wraps a SQLite connection holding the append-only sync_events
// table.
type Log struct {
	db *sql.DB
}

func dbPath(home string) string {
	return filepath.Join(home, "audit.db")
}

// Open opens (creating if necessary) the audit database at
// <home>/audit.db and ensures its schema exists.
func Open(home string) (*Log, error) {
	timer := logging.StartTimer(logging.CategoryWriter, "auditlog.Open")
	defer timer.Stop()

	if err := os.MkdirAll(home, 0700); err != nil {
		return nil, orcherr.WrapPath(orcherr.KindIO, home, err)
	}

	path := dbPath(home)
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, orcherr.WrapPath(orcherr.KindIO, path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, orcherr.WrapPath(orcherr.KindIO, path, err)
	}

	l := &Log{db: db}
	if err := l.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

func (l *Log) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS sync_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ts INTEGER NOT NULL,
		codebase TEXT NOT NULL,
		scope TEXT NOT NULL,
		written INTEGER NOT NULL,
		unchanged INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		error TEXT
	);`
	if _, err := l.db.Exec(schema); err != nil {
		return orcherr.Fmt(orcherr.KindIO, "init audit schema: %w", err)
	}
	return nil
}

// RecordSync appends one sync_events row per result in results.
func (l *Log) RecordSync(scope string, results []writer.SyncResult, duration time.Duration) error {
	ts := time.Now().UnixMilli()
	stmt, err := l.db.Prepare(`
		INSERT INTO sync_events (ts, codebase, scope, written, unchanged, duration_ms, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return orcherr.Fmt(orcherr.KindIO, "prepare audit insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range results {
		errText := ""
		if r.Err != nil {
			errText = r.Err.Error()
		}
		if _, err := stmt.Exec(ts, r.Codebase, scope, r.Written, r.Unchanged, duration.Milliseconds(), nullIfEmpty(errText)); err != nil {
			return orcherr.Fmt(orcherr.KindIO, "insert audit row: %w", err)
		}
	}
	return nil
}

// Event is one row read back from the audit log.
type Event struct {
	Timestamp time.Time
	Codebase  string
	Scope     string
	Written   int
	Unchanged int
	Duration  time.Duration
	Error     string
}

// Recent returns the most recent n sync_events rows, newest first.
func (l *Log) Recent(n int) ([]Event, error) {
	rows, err := l.db.Query(`
		SELECT ts, codebase, scope, written, unchanged, duration_ms, COALESCE(error, '')
		FROM sync_events ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, orcherr.Fmt(orcherr.KindIO, "query audit log: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var ts, durationMs int64
		var e Event
		if err := rows.Scan(&ts, &e.Codebase, &e.Scope, &e.Written, &e.Unchanged, &durationMs, &e.Error); err != nil {
			return nil, orcherr.Fmt(orcherr.KindIO, "scan audit row: %w", err)
		}
		e.Timestamp = time.UnixMilli(ts).UTC()
		e.Duration = time.Duration(durationMs) * time.Millisecond
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close releases the underlying SQLite connection.
func (l *Log) Close() error {
	return l.db.Close()
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
