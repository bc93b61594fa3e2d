package visitor

import (
	"context"
	"sync"
	"time"

	"regflow/pkg/apperrors"
)

var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "visitor not found")

type Store interface {
	Find(ctx context.Context, sessionID string) (*Visitor, error)
	Create(ctx context.Context, v *Visitor) error
}

// MemoryStore keeps visitors in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	visitors map[string]*Visitor
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{visitors: make(map[string]*Visitor)}
}

func (s *MemoryStore) Find(_ context.Context, sessionID string) (*Visitor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.visitors[sessionID]; ok {
		copied := *v
		return &copied, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) Create(_ context.Context, v *Visitor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// First write wins; a concurrent create for the same session must not
	// replace the stored record.
	if _, ok := s.visitors[v.SessionID]; ok {
		return nil
	}
	stored := *v
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	s.visitors[v.SessionID] = &stored
	return nil
}
