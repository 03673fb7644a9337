package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"example.com/charnotes/internal/store/migrations"
	"example.com/charnotes/pkg/codec"
	_ "modernc.org/sqlite"
)

// MaxIndex is the largest record index the schema accepts.
const MaxIndex = math.MaxInt16

const dsnPragmas = "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"

// Store holds the note characters. The zero value is not usable; call Open.
type Store struct {
	// mu serializes ReplaceAll so delete/insert sequences never interleave.
	mu   sync.Mutex
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the SQLite database at path and applies
// the embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, opError(OpOpen, fmt.Errorf("empty path"))
	}
	clean := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(clean), 0o700); err != nil {
		return nil, opError(OpOpen, fmt.Errorf("create parent dir: %w", err))
	}

	db, err := sql.Open("sqlite", clean+dsnPragmas)
	if err != nil {
		return nil, opError(OpOpen, err)
	}
	// Single writer; reads queue behind an open ReplaceAll transaction.
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, opError(OpOpen, fmt.Errorf("ping: %w", err))
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, opError(OpOpen, fmt.Errorf("run migrations: %w", err))
	}
	return &Store{db: db, path: clean}, nil
}

// Close releases the database handle. It is safe on a nil Store.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// LoadAll returns every stored record in insertion order.
func (s *Store) LoadAll(ctx context.Context) ([]codec.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, opError(OpFetch, err)
	}
	if s == nil || s.db == nil {
		return nil, opError(OpFetch, errNotOpen)
	}
	rows, err := s.db.QueryContext(ctx, `SELECT display, idx FROM characters ORDER BY id`)
	if err != nil {
		return nil, opError(OpFetch, err)
	}
	defer rows.Close()

	out := []codec.Record{}
	for rows.Next() {
		var rec codec.Record
		if err := rows.Scan(&rec.Display, &rec.Index); err != nil {
			return nil, opError(OpFetch, fmt.Errorf("scan character: %w", err))
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, opError(OpFetch, err)
	}
	return out, nil
}

// ReplaceAll deletes every stored record and inserts records in their
// place. Both steps commit together or not at all.
func (s *Store) ReplaceAll(ctx context.Context, records []codec.Record) error {
	if err := ctx.Err(); err != nil {
		return opError(OpSave, err)
	}
	if s == nil || s.db == nil {
		return opError(OpSave, errNotOpen)
	}
	for _, rec := range records {
		if rec.Index < 0 || rec.Index > MaxIndex {
			return opError(OpSave, fmt.Errorf("%w: %d", ErrIndexRange, rec.Index))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return opError(OpSave, fmt.Errorf("begin: %w", err))
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM characters`); err != nil {
		_ = tx.Rollback()
		return opError(OpSave, fmt.Errorf("delete characters: %w", err))
	}
	if len(records) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO characters (display, idx) VALUES (?, ?)`)
		if err != nil {
			_ = tx.Rollback()
			return opError(OpSave, fmt.Errorf("prepare insert: %w", err))
		}
		for _, rec := range records {
			if _, err := stmt.ExecContext(ctx, rec.Display, rec.Index); err != nil {
				_ = stmt.Close()
				_ = tx.Rollback()
				return opError(OpSave, fmt.Errorf("insert character %d: %w", rec.Index, err))
			}
		}
		_ = stmt.Close()
	}
	if err := tx.Commit(); err != nil {
		return opError(OpSave, fmt.Errorf("commit: %w", err))
	}
	return nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	if s == nil || s.db == nil {
		return 0, opError(OpFetch, errNotOpen)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM characters`).Scan(&n); err != nil {
		return 0, opError(OpFetch, err)
	}
	return n, nil
}
