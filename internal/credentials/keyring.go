package credentials

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// KeyringStore keeps the token in the OS keychain/credential manager
type KeyringStore struct {
	service string
	slot    string
}

// NewKeyringStore creates a store for the given keychain service and slot
func NewKeyringStore(service, slot string) *KeyringStore {
	return &KeyringStore{service: service, slot: slot}
}

// Save persists the token securely in the OS keychain
func (s *KeyringStore) Save(token string) error {
	if err := keyring.Set(s.service, s.slot, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Load retrieves the token from the OS keychain
func (s *KeyringStore) Load() (string, error) {
	token, err := keyring.Get(s.service, s.slot)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	if token == "" {
		return "", ErrNotFound
	}
	return token, nil
}

// Delete removes the token from the OS keychain
func (s *KeyringStore) Delete() error {
	if err := keyring.Delete(s.service, s.slot); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
