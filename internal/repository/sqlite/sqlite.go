// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which means you need a C compiler installed and
// cross-compilation becomes painful. modernc.org/sqlite is a pure Go
// translation of the SQLite C code.
//
// SCHEMA MIGRATIONS:
// The schema lives in migrations/*.sql, embedded into the binary with
// go:embed and applied by goose on every New. goose records applied versions
// in its own goose_db_version table, so running New against an existing
// database only applies what is missing.
//
// The pattern for every query is the same as anywhere in database/sql:
//  1. db.QueryContext / db.ExecContext     → runs queries
//  2. rows.Scan(&field1, &field2)          → reads results into Go variables
//  3. translate driver errors into apperror values before returning
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"
	sqlitedrv "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// goose keeps its filesystem, dialect and logger in package globals.
var gooseMu sync.Mutex

// DB wraps a sql.DB connection pool and implements both
// repository.AccountRepository and repository.PostRepository.
type DB struct {
	conn *sql.DB
}

// New opens the SQLite database at dbPath and brings its schema up to date.
//
// dbPath examples:
//   - "data/devconnector.db" → file-based database (persistent)
//   - ":memory:"             → in-memory database (tests)
//
// A nil logger silences migration output.
func New(ctx context.Context, dbPath string, logger *slog.Logger) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Every connection to ":memory:" gets its own empty database. Pinning the
	// pool to one connection keeps the migrated schema visible to every query.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if err := migrate(ctx, conn, logger); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return &DB{conn: conn}, nil
}

// connPragmas are applied by the driver to every connection it opens.
// A PRAGMA run through the pool would only reach one of them.
//
//   - journal_mode(WAL): readers don't block the writer
//   - foreign_keys(1):   posts.author_id must reference an account
//   - busy_timeout(5000): writers wait for the lock instead of failing with SQLITE_BUSY
var connPragmas = []string{
	"journal_mode(WAL)",
	"foreign_keys(1)",
	"busy_timeout(5000)",
}

// dsn appends connPragmas to dbPath as modernc "_pragma" parameters.
func dsn(dbPath string) string {
	var b strings.Builder
	b.WriteString(dbPath)

	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	for _, p := range connPragmas {
		b.WriteString(sep)
		b.WriteString("_pragma=")
		b.WriteString(p)
		sep = "&"
	}
	return b.String()
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping reports whether the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

func migrate(ctx context.Context, conn *sql.DB, logger *slog.Logger) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrationsFS)
	defer goose.SetBaseFS(nil)

	if logger != nil {
		goose.SetLogger(&gooseLogger{logger: logger})
	} else {
		goose.SetLogger(goose.NopLogger())
	}

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}

	return goose.UpContext(ctx, conn, "migrations")
}

// gooseLogger routes goose's printf-style output into slog.
type gooseLogger struct {
	logger *slog.Logger
}

func (l *gooseLogger) Printf(format string, v ...any) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)), slog.String("component", "migrations"))
}

// Fatalf is called by goose for unrecoverable errors. Those errors are also
// returned from UpContext, so logging is enough here.
func (l *gooseLogger) Fatalf(format string, v ...any) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)), slog.String("component", "migrations"))
}

// isUniqueViolation reports whether err is SQLite rejecting a write because
// it would break the UNIQUE constraint on column (e.g. "accounts.email").
func isUniqueViolation(err error, column string) bool {
	var sqlErr *sqlitedrv.Error
	if !errors.As(err, &sqlErr) {
		return false
	}
	if sqlErr.Code()&0xff != sqlite3.SQLITE_CONSTRAINT {
		return false
	}
	return strings.Contains(sqlErr.Error(), column)
}
