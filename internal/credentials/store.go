// Package credentials persists the session bearer token under a single named
// slot so it survives process restarts.
package credentials

import (
	"errors"
	"fmt"

	"github.com/edusurvey/edusurvey/internal/config"
)

// ErrNotFound is returned by Load when the slot is empty
var ErrNotFound = errors.New("no stored credential")

// Store defines the token persistence operations.
// This allows the session to run against the OS keychain, a local database or
// an in-memory fake in tests.
type Store interface {
	Load() (string, error)
	Save(token string) error
	Delete() error
}

// Open returns the Store selected by the configuration
func Open(cfg config.CredentialsConfig) (Store, error) {
	switch cfg.Backend {
	case config.BackendKeyring:
		return NewKeyringStore(cfg.Service, cfg.Slot), nil
	case config.BackendSQLite:
		return OpenSQLiteStore(cfg.DBPath, cfg.Slot)
	default:
		return nil, fmt.Errorf("unsupported credential backend: %s", cfg.Backend)
	}
}

// Close releases resources held by stores that own any
func Close(s Store) error {
	if c, ok := s.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
