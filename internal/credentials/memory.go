package credentials

import "sync"

// MemoryStore keeps the token in process memory. It backs tests and the
// --ephemeral CLI mode where nothing should touch disk.
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

// NewMemoryStore returns a store, optionally pre-seeded with a token
func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

func (m *MemoryStore) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == "" {
		return "", ErrNotFound
	}
	return m.token, nil
}

func (m *MemoryStore) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryStore) Delete() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
