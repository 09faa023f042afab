package storage

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Dialect is the SQL flavour a Store talks.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Config selects the backing store. It is resolved once at process start.
type Config struct {
	// Named environment (e.g. "development"). Empty selects an in-memory store.
	Environment string
	// Directory holding per-environment database files.
	DataDir string
	// Overrides the file selection. postgres:// and postgresql:// URLs use pgx,
	// anything else is taken as a SQLite file path.
	DatabaseURL string
	// Log every statement at debug level.
	Echo bool
}

var unsafeEnvChars = regexp.MustCompile(`[^a-z0-9_-]+`)

// FileName returns the database file name used for an environment.
func FileName(environment string) string {
	env := unsafeEnvChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(environment)), "_")
	return fmt.Sprintf("concert_db_%s.sqlite", env)
}

// IsMemory reports whether the config resolves to an ephemeral store.
func (c Config) IsMemory() bool {
	return c.DatabaseURL == "" && strings.TrimSpace(c.Environment) == ""
}

// Location describes where the data lives, for display.
func (c Config) Location() string {
	if c.IsMemory() {
		return ":memory:"
	}
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return filepath.Join(c.DataDir, FileName(c.Environment))
}

// resolve returns the dialect, database/sql driver name and DSN.
func (c Config) resolve() (Dialect, string, string) {
	url := strings.TrimSpace(c.DatabaseURL)
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return DialectPostgres, "pgx", url
	}
	const pragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if c.IsMemory() {
		return DialectSQLite, "sqlite", "file::memory:?" + pragmas
	}
	path := url
	if path == "" {
		path = filepath.Join(c.DataDir, FileName(c.Environment))
	}
	return DialectSQLite, "sqlite", "file:" + path + "?" + pragmas
}
