// Package database defines the common interfaces for the relational backends
// holding the snapshot manifest. The manifest repository interacts with the
// database exclusively through these interfaces, so SQLite, MySQL and
// PostgreSQL deployments are interchangeable.
package database

import (
	"database/sql"

	"gorm.io/gorm"
)

// DBConnection represents an abstraction of a database connection.
type DBConnection interface {
	// Close closes the underlying connection.
	Close() error
	// Type returns the database type (e.g., "sqlite", "mysql", "postgres").
	Type() string
	// Name returns the configured connection name.
	Name() string
	// GORM returns the underlying *gorm.DB handle.
	GORM() *gorm.DB
	// GetSQLDB returns the underlying *sql.DB connection.
	GetSQLDB() (*sql.DB, error)
}

// DBProvider is an interface responsible for providing database connections
// based on configuration.
type DBProvider interface {
	// GetConnection retrieves a database connection with the specified name.
	GetConnection(name string) (DBConnection, error)
	// CloseAll closes all connections managed by this provider.
	CloseAll() error
	// Type returns the database type handled by this provider.
	Type() string
}

// DBProviderGroup is the Fx group tag used to collect all DBProvider
// implementations.
const DBProviderGroup = "db_providers"
