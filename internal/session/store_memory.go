package session

import (
	"context"
	"sync"
	"time"
)

// MemoryManager tracks session identities in process memory.
type MemoryManager struct {
	mu  sync.Mutex
	ids map[string]time.Time
	ttl time.Duration
}

func NewMemoryManager(ttl time.Duration) *MemoryManager {
	return &MemoryManager{ids: make(map[string]time.Time), ttl: ttl}
}

func (m *MemoryManager) Touch(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids[id] = time.Now().Add(m.ttl)
	return nil
}

func (m *MemoryManager) Regenerate(_ context.Context, oldID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	newID := NewID()
	m.ids[newID] = time.Now().Add(m.ttl)
	delete(m.ids, oldID)
	return newID, nil
}

// Live reports whether an identity is currently registered and unexpired.
func (m *MemoryManager) Live(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	expiry, ok := m.ids[id]
	return ok && time.Now().Before(expiry)
}
