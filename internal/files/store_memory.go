package files

import (
	"context"
	"sync"

	"regflow/pkg/apperrors"
)

var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "attachment not found")

// MemoryMetaStore keeps attachment metadata in process memory.
type MemoryMetaStore struct {
	mu          sync.RWMutex
	attachments map[string][]Attachment
}

func NewMemoryMetaStore() *MemoryMetaStore {
	return &MemoryMetaStore{attachments: make(map[string][]Attachment)}
}

func (s *MemoryMetaStore) List(_ context.Context, sessionID string) ([]Attachment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Attachment{}, s.attachments[sessionID]...), nil
}

func (s *MemoryMetaStore) Save(_ context.Context, sessionID string, att Attachment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attachments[sessionID] = append(s.attachments[sessionID], att)
	return nil
}

func (s *MemoryMetaStore) Delete(_ context.Context, sessionID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.attachments[sessionID][:0]
	for _, att := range s.attachments[sessionID] {
		if att.ID != id {
			kept = append(kept, att)
		}
	}
	s.attachments[sessionID] = kept
	return nil
}

// MemoryBlobStore keeps raw attachment bytes in process memory.
type MemoryBlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{blobs: make(map[string][]byte)}
}

func (s *MemoryBlobStore) Write(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = append([]byte{}, data...)
	return nil
}

func (s *MemoryBlobStore) Read(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if data, ok := s.blobs[key]; ok {
		return append([]byte{}, data...), nil
	}
	return nil, ErrNotFound
}

func (s *MemoryBlobStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}
