package audit

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/marketloom/graphgate/internal/contract"
	"github.com/marketloom/graphgate/schema"
)

//go:embed migrations/sqlite/*.sql migrations/mysql/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// RunMigrations applies audit schema migrations. targetVersion < 0 migrates
// all the way up, 0 tears everything down, and a positive value migrates to
// that exact version in either direction.
func RunMigrations(cfg *contract.Config, targetVersion int) error {
	if cfg.AuditBackend == schema.NoneBackend {
		return fmt.Errorf("audit backend is none, nothing to migrate")
	}

	m, db, err := newMigrator(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	switch {
	case targetVersion < 0:
		err = m.Up()
	case targetVersion == 0:
		err = m.Down()
	default:
		err = m.Migrate(uint(targetVersion))
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// MigrationVersion reports the current schema version and dirty flag.
func MigrationVersion(cfg *contract.Config) (uint, bool, error) {
	if cfg.AuditBackend == schema.NoneBackend {
		return 0, false, fmt.Errorf("audit backend is none, no schema version")
	}

	m, db, err := newMigrator(cfg)
	if err != nil {
		return 0, false, err
	}
	defer func() { _ = db.Close() }()

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read migration version: %w", err)
	}
	return version, dirty, nil
}

// newMigrator opens a connection and wires the embedded migration source for
// the configured backend.
func newMigrator(cfg *contract.Config) (*migrate.Migrate, *sql.DB, error) {
	var db *sql.DB
	var driver database.Driver
	var sourceDir, dbName string
	var err error

	switch cfg.AuditBackend {
	case schema.SQLiteBackend:
		dbPath := cfg.AuditDBConnect
		if dbPath == "" {
			dbPath = contract.GetAuditDBFilePath()
		}
		db, err = sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open SQLite database: %w", err)
		}
		db.SetMaxOpenConns(1)
		driver, err = migratesqlite.WithInstance(db, &migratesqlite.Config{})
		sourceDir = "migrations/sqlite"
		dbName = "sqlite"

	case schema.MySQLBackend:
		db, err = sql.Open("mysql", cfg.AuditDBConnect)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open MySQL database: %w", err)
		}
		driver, err = migratemysql.WithInstance(db, &migratemysql.Config{})
		sourceDir = "migrations/mysql"
		dbName = "mysql"

	case schema.PostgreSQLBackend:
		db, err = sql.Open("pgx", cfg.AuditDBConnect)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open PostgreSQL database: %w", err)
		}
		driver, err = migratepostgres.WithInstance(db, &migratepostgres.Config{})
		sourceDir = "migrations/postgres"
		dbName = "postgres"

	default:
		return nil, nil, fmt.Errorf("unsupported audit backend: %s", cfg.AuditBackend)
	}

	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, sourceDir)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to load embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, dbName, driver)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return m, db, nil
}
