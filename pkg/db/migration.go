package db

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/listen-stream/music-svc/pkg/logger"
)

// Status is the schema state recorded in schema_migrations.
type Status struct {
	Version uint
	Dirty   bool
}

func (s Status) String() string {
	if s.Dirty {
		return fmt.Sprintf("version %d (dirty)", s.Version)
	}
	return fmt.Sprintf("version %d", s.Version)
}

// Migrator runs the SQL files embedded in the binary against one database.
type Migrator struct {
	m *migrate.Migrate
}

// NewMigrator reads migrations from dir inside fsys. Progress lines from
// golang-migrate are forwarded to log at debug level when log is non-nil.
func NewMigrator(conn *sql.DB, fsys fs.FS, dir string, log logger.Logger) (*Migrator, error) {
	src, err := iofs.New(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("migrations source %q: %w", dir, err)
	}
	target, err := postgres.WithInstance(conn, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("migrations target: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", target)
	if err != nil {
		return nil, fmt.Errorf("migrator: %w", err)
	}
	if log != nil {
		m.Log = migrateLogger{log}
	}
	return &Migrator{m: m}, nil
}

// Up applies everything pending. An up-to-date schema is not an error.
func (m *Migrator) Up() error {
	return ignoreNoChange(m.m.Up())
}

// Down reverts exactly one migration.
func (m *Migrator) Down() error {
	return ignoreNoChange(m.m.Steps(-1))
}

// Status reports the applied version; an empty database is version 0.
func (m *Migrator) Status() (Status, error) {
	v, dirty, err := m.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return Status{}, nil
	}
	if err != nil {
		return Status{}, err
	}
	return Status{Version: v, Dirty: dirty}, nil
}

// Force records version as applied and clean without running any SQL.
func (m *Migrator) Force(version int) error {
	return m.m.Force(version)
}

func (m *Migrator) Close() error {
	srcErr, dbErr := m.m.Close()
	return errors.Join(srcErr, dbErr)
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

// migrateLogger adapts logger.Logger to migrate.Logger.
type migrateLogger struct {
	log logger.Logger
}

func (l migrateLogger) Printf(format string, v ...any) {
	l.log.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)), logger.String("component", "migrate"))
}

func (l migrateLogger) Verbose() bool { return false }
