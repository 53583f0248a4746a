package configstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/goliatone/go-settingsform/pkg/document"
)

const createRevisions = `
CREATE TABLE IF NOT EXISTS config_revisions (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    body       TEXT    NOT NULL,
    created_at TIMESTAMP NOT NULL
)`

// Revision is one stored version of the document.
type Revision struct {
	ID        int64     `db:"id"`
	Body      string    `db:"body"`
	CreatedAt time.Time `db:"created_at"`
}

// Document decodes the revision body.
func (r Revision) Document() (document.Document, error) {
	var doc document.Document
	if err := json.Unmarshal([]byte(r.Body), &doc); err != nil {
		return nil, fmt.Errorf("configstore: decode revision %d: %w", r.ID, err)
	}
	if doc == nil {
		doc = document.Document{}
	}
	return doc, nil
}

// SQLStore appends every Put as a new revision; Get returns the latest.
type SQLStore struct {
	db  *sqlx.DB
	now func() time.Time
}

// OpenSQLStore opens (creating if needed) a SQLite database at path. Use
// ":memory:" for a throwaway store.
func OpenSQLStore(ctx context.Context, path string) (*SQLStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("configstore: sqlite path is required")
	}
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("configstore: open %s: %w", path, err)
	}
	// SQLite serialises writers; a single connection also keeps ":memory:"
	// databases alive across calls.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store, err := NewSQLStore(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLStore wraps an open database and ensures the revisions table.
func NewSQLStore(ctx context.Context, db *sqlx.DB) (*SQLStore, error) {
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("configstore: ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, createRevisions); err != nil {
		return nil, fmt.Errorf("configstore: migrate: %w", err)
	}
	return &SQLStore{db: db, now: time.Now}, nil
}

// Close releases the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Get returns the latest revision, or an empty document when none exists.
func (s *SQLStore) Get(ctx context.Context) (document.Document, error) {
	const q = `
        SELECT id, body, created_at
        FROM   config_revisions
        ORDER  BY id DESC
        LIMIT  1`
	var rev Revision
	if err := s.db.GetContext(ctx, &rev, q); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return document.Document{}, nil
		}
		return nil, fmt.Errorf("configstore: latest revision: %w", err)
	}
	return rev.Document()
}

// Put appends doc as a new revision.
func (s *SQLStore) Put(ctx context.Context, doc document.Document) error {
	if doc == nil {
		doc = document.Document{}
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("configstore: encode: %w", err)
	}
	const q = `INSERT INTO config_revisions (body, created_at) VALUES (?, ?)`
	if _, err := s.db.ExecContext(ctx, q, string(body), s.now().UTC()); err != nil {
		return fmt.Errorf("configstore: insert revision: %w", err)
	}
	return nil
}

// Revisions lists up to limit revisions, newest first. A limit <= 0 lists
// all of them.
func (s *SQLStore) Revisions(ctx context.Context, limit int) ([]Revision, error) {
	q := `
        SELECT id, body, created_at
        FROM   config_revisions
        ORDER  BY id DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	var rows []Revision
	if err := s.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("configstore: list revisions: %w", err)
	}
	return rows, nil
}
