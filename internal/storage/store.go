// Package storage implements core.Store on database/sql, with SQLite
// (modernc.org/sqlite, pure Go) as the default engine and PostgreSQL through
// pgx as an alternative.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "modernc.org/sqlite"             // registers the "sqlite" driver

	"github.com/theakshaypant/concertdb/internal/core"
)

var _ core.Store = (*Store)(nil)

// Store is the one database handle shared by every component of the process.
type Store struct {
	db       *sql.DB
	dialect  Dialect
	echo     bool
	location string
}

// Open connects to the store selected by cfg and applies the schema.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	dialect, driver, dsn := cfg.resolve()

	if dialect == DialectSQLite && !cfg.IsMemory() {
		dir := filepath.Dir(strings.TrimPrefix(strings.SplitN(dsn, "?", 2)[0], "file:"))
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}
	// A single connection serializes access, and for in-memory SQLite it is
	// the only way every query sees the same database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{db: db, dialect: dialect, echo: cfg.Echo, location: cfg.Location()}
	if err := s.init(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	slog.Debug("store opened", "dialect", dialect, "location", s.location)
	return s, nil
}

func (s *Store) init(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping %s: %w", s.dialect, err)
	}
	if s.dialect == DialectSQLite {
		if _, err := s.db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
			return fmt.Errorf("enable foreign keys: %w", err)
		}
		var on int
		if err := s.db.QueryRowContext(ctx, `PRAGMA foreign_keys`).Scan(&on); err != nil {
			return fmt.Errorf("check foreign keys: %w", err)
		}
		if on != 1 {
			return errors.New("sqlite foreign key enforcement is unavailable")
		}
	}
	for _, stmt := range schemaFor(s.dialect) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Dialect returns the SQL flavour of the store.
func (s *Store) Dialect() Dialect { return s.dialect }

// Location describes where the data lives.
func (s *Store) Location() string { return s.location }

// DB exposes the underlying handle for tests.
func (s *Store) DB() *sql.DB { return s.db }

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// rebind turns ? placeholders into the dialect's form and echoes the query.
func (s *Store) rebind(query string, args []any) string {
	if s.dialect == DialectPostgres {
		var b strings.Builder
		n := 0
		for _, r := range query {
			if r == '?' {
				n++
				b.WriteString("$" + strconv.Itoa(n))
				continue
			}
			b.WriteRune(r)
		}
		query = b.String()
	}
	if s.echo {
		slog.Debug("sql", "query", query, "args", args)
	}
	return query
}

func (s *Store) exec(ctx context.Context, q querier, query string, args ...any) (sql.Result, error) {
	return q.ExecContext(ctx, s.rebind(query, args), args...)
}

func (s *Store) query(ctx context.Context, q querier, query string, args ...any) (*sql.Rows, error) {
	return q.QueryContext(ctx, s.rebind(query, args), args...)
}

func (s *Store) queryRow(ctx context.Context, q querier, query string, args ...any) *sql.Row {
	return q.QueryRowContext(ctx, s.rebind(query, args), args...)
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, core.ErrNotFound)
	}
	return err
}
