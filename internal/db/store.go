package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/maaackz/folio/internal/storage"
)

// Dialect selects placeholder syntax.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

// Store is a storage.Backend over the documents table.
type Store struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

// NewStore wraps an initialized database. Close closes db.
func NewStore(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect, now: time.Now}
}

// DB returns the underlying handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
// Queries here never contain a literal '?'.
func (s *Store) rebind(query string) string {
	if s.dialect != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Read returns the document body at key.
func (s *Store) Read(ctx context.Context, key string) ([]byte, error) {
	var body string
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT body FROM documents WHERE key = ?`), key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return []byte(body), nil
}

// Write upserts the document at key.
func (s *Store) Write(ctx context.Context, key string, data []byte) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}
	return s.write(ctx, s.db, key, data)
}

func (s *Store) write(ctx context.Context, ex execer, key string, data []byte) error {
	query := s.rebind(`
		INSERT INTO documents (key, body, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at
	`)
	if _, err := ex.ExecContext(ctx, query, key, string(data), s.now().Unix()); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Delete removes the document at key.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.delete(ctx, s.db, key)
}

func (s *Store) delete(ctx context.Context, ex execer, key string) error {
	if _, err := ex.ExecContext(ctx, s.rebind(`DELETE FROM documents WHERE key = ?`), key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// ListKeys returns keys under prefix in byte order. Sorting happens here
// rather than in SQL so PostgreSQL collations cannot reorder keys.
func (s *Store) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT key FROM documents WHERE key LIKE ? ESCAPE '\'`),
		escapeLike(prefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", prefix, err)
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("list %q: %w", prefix, err)
		}
		// LIKE is case-insensitive for ASCII in SQLite
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %q: %w", prefix, err)
	}

	slices.Sort(keys)
	return keys, nil
}

// Apply runs every op in one transaction.
func (s *Store) Apply(ctx context.Context, ops []storage.Op) error {
	for _, op := range ops {
		if err := storage.ValidateKey(op.Key); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	defer tx.Rollback()

	for _, op := range ops {
		switch op.Kind {
		case storage.OpWrite:
			err = s.write(ctx, tx, op.Key, op.Data)
		case storage.OpDelete:
			err = s.delete(ctx, tx, op.Key)
		default:
			err = fmt.Errorf("unknown op kind %d", op.Kind)
		}
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
