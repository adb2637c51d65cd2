package storage

import (
	"fmt"

	"github.com/microlearning/microlearn/internal/config"
)

// Open returns the Storage backend named by cfg.Storage.Driver. The choice is
// made once here; callers hold only the interface.
func Open(cfg *config.Config) (Storage, error) {
	switch cfg.Storage.Driver {
	case "sqlite":
		return NewSQLiteStorage(cfg.Storage.DatabasePath)
	case "mongo":
		return NewMongoStorage(cfg.Storage.MongoURI, cfg.Storage.MongoDatabase)
	case "memory":
		return NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
