package files

import (
	"context"
	"os"
	"path/filepath"
)

// FSBlobStore persists attachment bytes on the local filesystem, one file per
// storage key. Metadata stays in the MetaStore; only content lives here.
type FSBlobStore struct {
	dir string
}

func NewFSBlobStore(dir string) (*FSBlobStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, err
	}
	return &FSBlobStore{dir: dir}, nil
}

func (s *FSBlobStore) Write(_ context.Context, key string, data []byte) error {
	return os.WriteFile(s.path(key), data, 0o640)
}

func (s *FSBlobStore) Read(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	return data, err
}

func (s *FSBlobStore) Remove(_ context.Context, key string) error {
	err := os.Remove(s.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *FSBlobStore) path(key string) string {
	// Keys are server-generated UUIDs; Base guards against anything else.
	return filepath.Join(s.dir, filepath.Base(key))
}
