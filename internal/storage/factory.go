// internal/storage/factory.go
package storage

import (
	"fmt"

	"github.com/synthrisk/perilgen/internal/config"
	"github.com/synthrisk/perilgen/internal/storage/gormstore"
	"github.com/synthrisk/perilgen/internal/storage/memory"
)

// NewBackend creates a storage backend based on configuration.
func NewBackend(cfg config.StorageConfig, deps gormstore.Dependencies) (Backend, error) {
	switch cfg.Type {
	case "gorm":
		return gormstore.New(deps), nil
	case "memory":
		return memory.New(cfg.Memory), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
