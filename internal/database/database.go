// Package database keeps an SQLite index of evaluation runs.
package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3" // Registers the sqlite3 driver.
)

// busyTimeoutMillis lets a second process listing runs wait for a writer.
const busyTimeoutMillis = 5000

var ErrEmptyPath = errors.New("run store path is empty")

//go:embed migrations/*.sql
var migrations embed.FS

type Database struct {
	db   *sql.DB
	path string
	log  *slog.Logger
}

// New opens the run store at path and brings its schema up to date.
func New(ctx context.Context, path string, log *slog.Logger) (*Database, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, ErrEmptyPath
	}

	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open run store: %w", err)
	}

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping run store: %w", err)
	}

	if err = migrateUp(ctx, db, path, log); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Database{db: db, path: path, log: log}, nil
}

// dsn enables foreign keys for run_items and a busy timeout.
func dsn(path string) string {
	params := url.Values{}
	params.Set("_foreign_keys", "on")
	params.Set("_busy_timeout", fmt.Sprint(busyTimeoutMillis))

	return "file:" + path + "?" + params.Encode()
}

func migrateUp(ctx context.Context, db *sql.DB, path string, log *slog.Logger) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("read embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := m.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		log.WarnContext(ctx, "Failed to read run store schema version",
			"error", err,
			"dbPath", path)
	}

	log.InfoContext(ctx, "Run store is ready",
		"dbPath", path,
		"schemaVersion", version,
		"dirty", dirty,
		"migrated", upErr == nil)

	return nil
}

func (d *Database) Path() string {
	return d.path
}

func (d *Database) Close() error {
	return d.db.Close()
}
