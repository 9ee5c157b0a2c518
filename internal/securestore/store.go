package securestore

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/inovacc/labctl/internal/application"
	"github.com/inovacc/labctl/internal/config"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("secure storage: key not found")

// Fixed storage keys.
const (
	KeyCachedBackendURL = "cached_backend_url"
	KeyAuthToken        = "authToken"
)

// Store is a string key-value store backed by secure storage.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open returns the backend selected by cfg.
func Open(cfg *config.Config) (Store, error) {
	switch cfg.Storage {
	case config.StorageKeyring:
		return NewKeyring(application.AppName), nil
	case config.StorageFile:
		path := cfg.StoragePath
		if path == "" {
			dir, err := application.EnsureApplicationDirectory()
			if err != nil {
				return nil, err
			}

			path = filepath.Join(dir, application.StorageFileName)
		}

		return NewFile(path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}
}
