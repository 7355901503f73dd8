package storage

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Store owns a single code-graph database file. It is not safe for
// concurrent mutation; the embedding application serializes all writes.
type Store struct {
	db   *sql.DB
	log  *zap.Logger
	path string
	mode StorageMode
	tx   *sql.Tx
}

// Option configures a Store at open time.
type Option func(*Store)

// WithLogger sets the logger used for engine diagnostics. The default is a
// no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// Open opens (creating if necessary) the database file at path. The path is
// canonicalized so that the same file opened through different symlinks maps
// to the same database. Open does not create any tables; call Setup.
func Open(path string, opts ...Option) (*Store, error) {
	canonical := path
	if !isMemoryPath(path) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve database path: %w", err)
		}
		canonical = abs
		if resolved, err := filepath.EvalSymlinks(abs); err == nil {
			canonical = resolved
		}
	}

	db, err := sql.Open(DriverName, canonical)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single connection: SQLite is a single-writer engine, and the open
	// transaction must be visible to every statement on this store.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		log:  zap.NewNop(),
		path: canonical,
		mode: ModeUnknown,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the database connection. An open transaction is rolled back.
func (s *Store) Close() error {
	if s.tx != nil {
		_ = s.tx.Rollback()
		s.tx = nil
	}
	return s.db.Close()
}

// DBFilePath returns the canonicalized path of the database file.
func (s *Store) DBFilePath() string {
	return s.path
}

// OptimizeMemory reclaims unused space in the database file.
func (s *Store) OptimizeMemory(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "VACUUM"); err != nil {
		return wrapEngineError(err)
	}
	return nil
}

// BeginTransaction starts a unit of work. Transactions do not nest.
func (s *Store) BeginTransaction(ctx context.Context) error {
	if s.tx != nil {
		return ErrTransactionOpen
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapEngineError(err)
	}
	s.tx = tx
	return nil
}

// CommitTransaction commits the open transaction.
func (s *Store) CommitTransaction() error {
	if s.tx == nil {
		return ErrNoTransaction
	}
	err := s.tx.Commit()
	s.tx = nil
	return wrapEngineError(err)
}

// RollbackTransaction discards the open transaction.
func (s *Store) RollbackTransaction() error {
	if s.tx == nil {
		return ErrNoTransaction
	}
	err := s.tx.Rollback()
	s.tx = nil
	return wrapEngineError(err)
}

// querier is the subset of *sql.DB and *sql.Tx the store executes against.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// querier routes statements through the open transaction when one exists.
func (s *Store) querier() querier {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

func (s *Store) exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	res, err := s.querier().ExecContext(ctx, query, args...)
	if err != nil {
		return nil, wrapEngineError(err)
	}
	return res, nil
}

// insert executes an INSERT and returns the generated rowid.
func (s *Store) insert(ctx context.Context, query string, args ...interface{}) (int64, error) {
	res, err := s.exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, wrapEngineError(err)
	}
	return id, nil
}

// scalarInt runs a single-value aggregate query, returning 0 on no rows.
func (s *Store) scalarInt(ctx context.Context, query string, args ...interface{}) (int, error) {
	var n int
	err := s.querier().QueryRowContext(ctx, query, args...).Scan(&n)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, wrapEngineError(err)
	}
	return n, nil
}

// placeholders returns "?,?,..,?" for n parameters.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func isMemoryPath(path string) bool {
	return path == ":memory:" || strings.Contains(path, "mode=memory")
}
