// Package history keeps a sqlite ledger of delivered pick outcomes.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/snapetech/vidpicker/internal/pick"
)

const schema = `
CREATE TABLE IF NOT EXISTS picks (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id  TEXT NOT NULL,
	outcome     TEXT NOT NULL,
	error_kind  TEXT NOT NULL,
	path        TEXT NOT NULL DEFAULT '',
	detail      TEXT NOT NULL DEFAULT '',
	at          INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS picks_at ON picks(at);
`

// Entry is one recorded outcome.
type Entry struct {
	SessionID string
	Outcome   string
	ErrorKind string
	Path      string
	Detail    string
	At        time.Time
}

// Store is a sqlite-backed ledger.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the ledger at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history DB: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Record stores out for sessionID.
func (s *Store) Record(ctx context.Context, sessionID string, out pick.Outcome) error {
	kind := pick.KindOf(out.Err)
	if kind == pick.KindNone && out.Note != pick.KindNone {
		kind = out.Note
	}
	detail := ""
	if out.Err != nil {
		detail = out.Err.Error()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO picks (session_id, outcome, error_kind, path, detail, at) VALUES (?, ?, ?, ?, ?, ?)`,
		sessionID, out.Kind.String(), kind.String(), string(out.Path), detail, s.now().UnixNano())
	if err != nil {
		return fmt.Errorf("record pick %s: %w", sessionID, err)
	}
	return nil
}

// Recent returns up to n entries, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		n = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, outcome, error_kind, path, detail, at FROM picks ORDER BY at DESC, id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		var at int64
		if err := rows.Scan(&e.SessionID, &e.Outcome, &e.ErrorKind, &e.Path, &e.Detail, &at); err != nil {
			return nil, err
		}
		e.At = time.Unix(0, at)
		out = append(out, e)
	}
	return out, rows.Err()
}
