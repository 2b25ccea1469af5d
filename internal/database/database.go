package database

import (
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"studentrecords/internal/config"
)

// Open connects to the SQL database selected by cfg.StorageBackend.
func Open(cfg config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.StorageBackend {
	case config.BackendSQLite:
		dialector = sqlite.Open(cfg.StoragePath)
	case config.BackendPostgres:
		dialector = postgres.Open(cfg.PostgresDSN())
	default:
		return nil, errors.Errorf("storage backend %q is not a database", cfg.StorageBackend)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to the database")
	}
	return db, nil
}
