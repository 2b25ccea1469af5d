package storage

import (
	"github.com/pkg/errors"

	"studentrecords/internal/config"
	"studentrecords/internal/database"
)

// Open returns the backend selected by cfg.StorageBackend.
func Open(cfg config.Config) (Backend, error) {
	switch cfg.StorageBackend {
	case config.BackendFile, "":
		codec, err := CodecFor(cfg.StorageFormat)
		if err != nil {
			return nil, err
		}
		return NewFileBackend(cfg.StoragePath, codec), nil
	case config.BackendSQLite, config.BackendPostgres:
		db, err := database.Open(cfg)
		if err != nil {
			return nil, err
		}
		return NewGormBackend(db)
	case config.BackendBolt:
		return NewBoltBackend(cfg.StoragePath)
	}
	return nil, errors.Errorf("unknown storage backend %q", cfg.StorageBackend)
}
