package manifest

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/tigerroll/standlake/pkg/database"
	"github.com/tigerroll/standlake/pkg/util/logger"
)

//go:embed migrations/sqlite migrations/mysql migrations/postgres
var migrationsFS embed.FS

// MigrationsTable is the bookkeeping table golang-migrate uses for the
// manifest schema.
const MigrationsTable = "standlake_schema_migrations"

// Migrate brings the manifest schema of the given connection up to date,
// applying the embedded migrations for the connection's dialect.
func Migrate(conn database.DBConnection) error {
	sqlDB, err := conn.GetSQLDB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations/"+conn.Type())
	if err != nil {
		return fmt.Errorf("failed to create iofs source driver for dialect %s: %w", conn.Type(), err)
	}

	dbDriver, err := databaseDriver(sqlDB, conn.Type())
	if err != nil {
		return fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, conn.Type(), dbDriver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("manifest migration failed (DB: %s): %w", conn.Type(), err)
	}

	logger.Infof("Manifest schema is up to date on connection '%s' (%s).", conn.Name(), conn.Type())
	return nil
}

// databaseDriver retrieves a migrate/v4 driver for the database type.
func databaseDriver(sqlDB *sql.DB, dbType string) (migratedb.Driver, error) {
	switch dbType {
	case "postgres":
		return postgres.WithInstance(sqlDB, &postgres.Config{MigrationsTable: MigrationsTable})
	case "mysql":
		return mysql.WithInstance(sqlDB, &mysql.Config{MigrationsTable: MigrationsTable})
	case "sqlite":
		return sqlite.WithInstance(sqlDB, &sqlite.Config{MigrationsTable: MigrationsTable})
	default:
		return nil, fmt.Errorf("unsupported database type for migration: %s", dbType)
	}
}
