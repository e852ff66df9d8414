// Package journal keeps a SQLite record of every rewrite published to the
// peer, for inspection with `gen3talk history`.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultLimit is used by Recent when limit is not positive
const DefaultLimit = 20

// Entry is one processed request
type Entry struct {
	ID          int64     `json:"id"`
	RequestID   string    `json:"request_id"`
	Original    string    `json:"original"`
	Rewritten   string    `json:"rewritten"`
	RequestHex  string    `json:"request_hex"`
	ResponseHex string    `json:"response_hex"`
	CreatedAt   time.Time `json:"created_at"`
}

// Journal wraps the SQLite database
type Journal struct {
	db *sql.DB
}

// Open opens (or creates) the journal at path
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	// One writer at a time; the loop is the only producer.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	j := &Journal{db: db}
	if err := j.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return j, nil
}

// Close closes the database
func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) migrate() error {
	_, err := j.db.Exec(`
		CREATE TABLE IF NOT EXISTS rewrites (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			request_id   TEXT NOT NULL,
			original     TEXT NOT NULL,
			rewritten    TEXT NOT NULL,
			request_hex  TEXT NOT NULL DEFAULT '',
			response_hex TEXT NOT NULL DEFAULT '',
			created_at   TEXT NOT NULL
		)
	`)
	return err
}

// Record inserts e and fills in its ID, and CreatedAt when unset
func (j *Journal) Record(ctx context.Context, e *Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	res, err := j.db.ExecContext(ctx, `
		INSERT INTO rewrites (request_id, original, rewritten, request_hex, response_hex, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.RequestID, e.Original, e.Rewritten, e.RequestHex, e.ResponseHex,
		e.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record rewrite %s: %w", e.RequestID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("record rewrite %s: %w", e.RequestID, err)
	}
	e.ID = id
	return nil
}

// Recent returns up to limit entries, newest first
func (j *Journal) Recent(ctx context.Context, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, request_id, original, rewritten, request_hex, response_hex, created_at
		FROM rewrites ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query rewrites: %w", err)
	}
	defer rows.Close()

	entries := []*Entry{}
	for rows.Next() {
		var e Entry
		var created string
		if err := rows.Scan(&e.ID, &e.RequestID, &e.Original, &e.Rewritten, &e.RequestHex, &e.ResponseHex, &created); err != nil {
			return nil, fmt.Errorf("scan rewrite: %w", err)
		}
		e.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", created, err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
