// Package sqlite implements the registry and tracking repositories on SQLite
// using the pure-Go ncruces driver.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/ncruces/go-sqlite3"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	domainreg "github.com/fkid009/MLflow-study/internal/domain/registry"
	domaintrack "github.com/fkid009/MLflow-study/internal/domain/tracking"
	"github.com/fkid009/MLflow-study/internal/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB owns the SQLite connection pool and hands out repositories backed by it.
type DB struct {
	conn *sql.DB
	path string
}

// NewDB opens (creating if needed) the database at path and applies pending
// migrations. When an existing schema is about to change it is first
// snapshotted to <path>.bak.
func NewDB(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := "file:" + path +
		"?_pragma=busy_timeout(5000)" +
		"&_pragma=foreign_keys(1)" +
		"&_pragma=journal_mode(wal)" +
		"&_txlock=immediate"
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{conn: conn, path: path}
	if err := db.migrate(context.Background()); err != nil {
		_ = conn.Close()
		return nil, err
	}
	log.Debug(log.CatDB, "database ready", "path", path)
	return db, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Connection returns the underlying *sql.DB.
func (db *DB) Connection() *sql.DB {
	return db.conn
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// RegistryRepository returns the model registry repository.
func (db *DB) RegistryRepository() domainreg.RegistryRepository {
	return newRegistryRepository(db.conn)
}

// RunStore returns the experiment tracking store.
func (db *DB) RunStore() domaintrack.RunStore {
	return newRunRepository(db.conn)
}

// migrate applies every embedded up-migration newer than the recorded schema
// version. Migrations are read through golang-migrate's iofs source and each
// runs in its own transaction together with the version bump.
func (db *DB) migrate(ctx context.Context) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	defer func() { _ = src.Close() }()

	if _, err := db.conn.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY, applied_at INTEGER NOT NULL)`,
	); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	var current uint
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`,
	).Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	pending, err := pendingVersions(src, current)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}
	if current > 0 {
		if err := db.backup(ctx); err != nil {
			return fmt.Errorf("failed to back up database: %w", err)
		}
	}
	for _, version := range pending {
		if err := db.applyMigration(ctx, src, version); err != nil {
			return err
		}
	}
	return nil
}

// pendingVersions lists the source's versions above current, in order.
func pendingVersions(src source.Driver, current uint) ([]uint, error) {
	var pending []uint
	version, err := src.First()
	for ; err == nil; version, err = src.Next(version) {
		if version > current {
			pending = append(pending, version)
		}
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to iterate migrations: %w", err)
	}
	return pending, nil
}

// backup writes a consistent copy of the database to <path>.bak. The WAL is
// checkpointed first so the main file is current too, and VACUUM INTO reads
// through SQLite rather than copying bytes under a live writer.
func (db *DB) backup(ctx context.Context) error {
	dst := db.path + ".bak"
	if err := os.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	var busy, walPages, checkpointed int
	if err := db.conn.QueryRowContext(ctx, `PRAGMA wal_checkpoint(TRUNCATE)`).Scan(&busy, &walPages, &checkpointed); err != nil {
		return fmt.Errorf("checkpoint: %w", err)
	}
	if _, err := db.conn.ExecContext(ctx, `VACUUM INTO ?`, dst); err != nil {
		return fmt.Errorf("vacuum into %s: %w", dst, err)
	}
	log.Info(log.CatDB, "backed up database before migrating", "path", dst, "wal_busy", busy == 1)
	return nil
}

func (db *DB) applyMigration(ctx context.Context, src source.Driver, version uint) error {
	r, name, err := src.ReadUp(version)
	if err != nil {
		return fmt.Errorf("failed to read migration %d: %w", version, err)
	}
	body, err := io.ReadAll(r)
	_ = r.Close()
	if err != nil {
		return fmt.Errorf("failed to read migration %d: %w", version, err)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration %d: %w", version, err)
	}
	defer func() { _ = tx.Rollback() }()

	if strings.TrimSpace(string(body)) != "" {
		if _, err := tx.ExecContext(ctx, string(body)); err != nil {
			return fmt.Errorf("failed to apply migration %d (%s): %w", version, name, err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`,
		version, time.Now().Unix(),
	); err != nil {
		return fmt.Errorf("failed to record migration %d: %w", version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", version, err)
	}
	log.Info(log.CatDB, "applied migration", "version", version, "name", name)
	return nil
}

// mapError converts driver errors into domain errors. Busy and locked
// databases become TransientStoreError; so do expired contexts.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sqlite3.BUSY) || errors.Is(err, sqlite3.LOCKED) ||
		errors.Is(err, context.DeadlineExceeded) {
		return &domainreg.TransientStoreError{Op: op, Err: err}
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// isUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY conflict.
func isUniqueViolation(err error) bool {
	return errors.Is(err, sqlite3.CONSTRAINT_UNIQUE) || errors.Is(err, sqlite3.CONSTRAINT_PRIMARYKEY)
}

// withTx runs fn in a write transaction. The DSN sets _txlock=immediate so the
// write lock is taken at BEGIN, which serializes concurrent read-modify-write
// sequences such as version numbering.
func withTx(ctx context.Context, conn *sql.DB, op string, fn func(tx *sql.Tx) error) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return mapError(op, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return mapError(op, err)
	}
	return nil
}

func toMillis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms) }
