// Package sqlite registers the SQLite dialector for the job repository.
package sqlite

import (
	"errors"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	dbconfig "github.com/tigerroll/daioe-scb/pkg/batch/adapter/database/config"
	gormadapter "github.com/tigerroll/daioe-scb/pkg/batch/adapter/database/gorm"
)

func init() {
	gormadapter.RegisterDialector("sqlite", func(cfg dbconfig.DatabaseConfig) (gorm.Dialector, error) {
		dsn := ConnectionString(cfg)
		if dsn == "" {
			return nil, errors.New("SQLite database path cannot be empty")
		}
		return sqlite.Open(dsn), nil
	})
}

// ConnectionString returns the DSN for cfg. The SQLite dialector takes the file path directly.
func ConnectionString(cfg dbconfig.DatabaseConfig) string {
	return cfg.Database
}
