package settings

import (
	"context"
	"sync"
)

// memStore is the development fallback used when no Redis is configured.
type memStore struct {
	mu  sync.RWMutex
	cur Settings
	set bool
}

func NewMemoryStore() Store {
	return &memStore{}
}

func (m *memStore) Load(ctx context.Context) Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.set {
		return Defaults()
	}
	return m.cur
}

func (m *memStore) Save(ctx context.Context, s Settings) error {
	m.mu.Lock()
	m.cur = s
	m.set = true
	m.mu.Unlock()
	return nil
}
