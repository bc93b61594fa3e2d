package registration

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps registrations in process memory. It favors clarity over
// performance and backs the development server and unit tests.
type MemoryStore struct {
	mu   sync.RWMutex
	regs map[string]*Registration
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{regs: make(map[string]*Registration)}
}

func (s *MemoryStore) Find(_ context.Context, sessionID string) (*Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if reg, ok := s.regs[sessionID]; ok {
		return reg.Clone(), nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) Create(_ context.Context, reg *Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	stored := reg.Clone()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.regs[reg.SessionID] = stored
	reg.CreatedAt = now
	reg.UpdatedAt = now
	return nil
}

func (s *MemoryStore) Save(_ context.Context, reg *Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.regs[reg.SessionID]; !ok {
		return ErrNotFound
	}
	stored := reg.Clone()
	stored.UpdatedAt = time.Now()
	s.regs[reg.SessionID] = stored
	reg.UpdatedAt = stored.UpdatedAt
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.regs, sessionID)
	return nil
}
