// Package mysql provides a GORM DBProvider implementation for MySQL databases.
package mysql

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	appconfig "github.com/tigerroll/standlake/internal/config"
	"github.com/tigerroll/standlake/pkg/database"
	dbconfig "github.com/tigerroll/standlake/pkg/database/config"
	gormadapter "github.com/tigerroll/standlake/pkg/database/gorm"
)

// init registers the MySQL dialector factory with the GORM adapter.
func init() {
	gormadapter.RegisterDialector("mysql", func(cfg dbconfig.DatabaseConfig) (gorm.Dialector, error) {
		return mysql.Open(ConnectionString(cfg)), nil
	})
}

// ConnectionString generates the DSN for MySQL connections.
func ConnectionString(c dbconfig.DatabaseConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

// MySQLDBProvider implements database.DBProvider for MySQL connections.
type MySQLDBProvider struct {
	*gormadapter.BaseProvider
}

// NewProvider creates a new database.DBProvider for MySQL.
// This function is intended to be used with fx.Provide.
func NewProvider(cfg *appconfig.Config) database.DBProvider {
	return &MySQLDBProvider{BaseProvider: gormadapter.NewBaseProvider(cfg, "mysql")}
}
