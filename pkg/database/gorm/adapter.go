package gorm

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"

	"github.com/tigerroll/standlake/pkg/database"
	dbconfig "github.com/tigerroll/standlake/pkg/database/config"
	"github.com/tigerroll/standlake/pkg/util/logger"
)

// NewGormLogger creates a gorm.Logger instance based on the given log level.
func NewGormLogger(level string) gorm_logger.Interface {
	var gormLevel gorm_logger.LogLevel
	switch strings.ToLower(level) {
	case "silent":
		gormLevel = gorm_logger.Silent
	case "error":
		gormLevel = gorm_logger.Error
	case "warn":
		gormLevel = gorm_logger.Warn
	case "info":
		gormLevel = gorm_logger.Info
	default:
		gormLevel = gorm_logger.Silent
	}

	return gorm_logger.New(
		NewGormWriter(),
		gorm_logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// GormWriter redirects GORM log output to the application logger.
type GormWriter struct{}

// NewGormWriter creates a new instance of GormWriter.
func NewGormWriter() *GormWriter {
	return &GormWriter{}
}

// Printf implements the gorm_logger.Writer interface.
func (w *GormWriter) Printf(format string, v ...interface{}) {
	msg := strings.TrimSpace(fmt.Sprintf(format, v...))
	// SQL trace lines are demoted to DEBUG; everything else is INFO.
	if strings.Contains(msg, "SELECT") || strings.Contains(msg, "INSERT") || strings.Contains(msg, "UPDATE") || strings.Contains(msg, "DELETE") {
		logger.Debugf("[GORM] %s", msg)
	} else {
		logger.Infof("[GORM] %s", msg)
	}
}

// GormDBAdapter implements database.DBConnection.
type GormDBAdapter struct {
	db     *gorm.DB
	sqlDB  *sql.DB
	cfg    dbconfig.DatabaseConfig
	dbType string
	name   string
}

// Verify that GormDBAdapter implements the database.DBConnection interface.
var _ database.DBConnection = (*GormDBAdapter)(nil)

// NewGormDBAdapter creates a new GormDBAdapter.
func NewGormDBAdapter(db *gorm.DB, cfg dbconfig.DatabaseConfig, name string) (database.DBConnection, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying *sql.DB for connection '%s': %w", name, err)
	}

	return &GormDBAdapter{
		db:     db,
		sqlDB:  sqlDB,
		cfg:    cfg,
		dbType: cfg.Type,
		name:   name,
	}, nil
}

// Close closes the underlying database connection.
func (a *GormDBAdapter) Close() error {
	if a.sqlDB != nil {
		logger.Infof("Closing database connection '%s'...", a.name)
		return a.sqlDB.Close()
	}
	return nil
}

// Type returns the database type.
func (a *GormDBAdapter) Type() string {
	return a.dbType
}

// Name returns the name of this connection.
func (a *GormDBAdapter) Name() string {
	return a.name
}

// GORM returns the underlying *gorm.DB handle.
func (a *GormDBAdapter) GORM() *gorm.DB {
	return a.db
}

// GetSQLDB returns the underlying *sql.DB connection.
func (a *GormDBAdapter) GetSQLDB() (*sql.DB, error) {
	if a.sqlDB == nil {
		return nil, fmt.Errorf("no underlying *sql.DB for connection '%s'", a.name)
	}
	return a.sqlDB, nil
}

// Config returns the database configuration used by this adapter.
func (a *GormDBAdapter) Config() dbconfig.DatabaseConfig {
	return a.cfg
}
