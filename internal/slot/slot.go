// Package slot provides the durable storage backends for the task snapshot.
package slot

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/amonks/orbit/internal/config"
	"github.com/amonks/orbit/internal/paths"
	"github.com/amonks/orbit/task"
)

// Slot is a task.Storage that holds resources until closed.
type Slot interface {
	task.Storage
	io.Closer
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// DefaultDatabaseName is the sqlite file created in the state directory
// when no path is configured.
const DefaultDatabaseName = "orbit.db"

// Open returns the backend selected by cfg.
func Open(cfg config.Storage) (Slot, error) {
	switch cfg.Backend {
	case "", BackendFile:
		dir, err := resolvePath(cfg.Path, paths.DefaultStateDir)
		if err != nil {
			return nil, err
		}
		return NewFile(dir), nil
	case BackendSQLite:
		path, err := resolvePath(cfg.Path, func() (string, error) {
			dir, err := paths.DefaultStateDir()
			if err != nil {
				return "", err
			}
			return filepath.Join(dir, DefaultDatabaseName), nil
		})
		if err != nil {
			return nil, err
		}
		db, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return db, nil
	case BackendRedis:
		r, err := OpenRedis(RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
		if err != nil {
			return nil, err
		}
		return r, nil
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q (want file, sqlite, redis, or memory)", cfg.Backend)
	}
}

func resolvePath(configured string, fallback func() (string, error)) (string, error) {
	expanded, err := paths.ExpandHome(configured)
	if err != nil {
		return "", err
	}
	return paths.ResolveWithDefault(expanded, fallback)
}
