package files_test

import (
	"context"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	"regflow/internal/files"
	"regflow/pkg/apperrors"
)

type ManagerSuite struct {
	suite.Suite
	ctx     context.Context
	meta    *files.MemoryMetaStore
	blobs   *files.MemoryBlobStore
	manager *files.Manager
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(ManagerSuite))
}

func (s *ManagerSuite) SetupTest() {
	s.ctx = context.Background()
	s.meta = files.NewMemoryMetaStore()
	s.blobs = files.NewMemoryBlobStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.manager = files.NewManager(s.meta, s.blobs, logger)
}

func upload(name string, content string) files.Upload {
	return files.Upload{FileName: name, MimeType: "image/jpeg", Content: []byte(content)}
}

func (s *ManagerSuite) TestReplace() {
	s.Run("stores a new attachment", func() {
		s.Require().NoError(s.manager.Replace(s.ctx, "sess-1", "passport", upload("p.jpg", "scan-1")))

		listing, err := s.manager.ListByType(s.ctx, "sess-1")
		s.Require().NoError(err)
		s.Require().Len(listing["passport"], 1)
		s.Equal("p.jpg", listing["passport"][0].Name)
	})

	s.Run("replacing the same type keeps only the latest", func() {
		s.Require().NoError(s.manager.Replace(s.ctx, "sess-2", "passport", upload("a.jpg", "scan-a")))
		s.Require().NoError(s.manager.Replace(s.ctx, "sess-2", "passport", upload("b.jpg", "scan-b")))

		listing, err := s.manager.ListByType(s.ctx, "sess-2")
		s.Require().NoError(err)
		s.Require().Len(listing["passport"], 1)
		s.Equal("b.jpg", listing["passport"][0].Name)
		s.Equal(int64(len("scan-b")), listing["passport"][0].Size)
	})

	s.Run("different types coexist", func() {
		s.Require().NoError(s.manager.Replace(s.ctx, "sess-3", "passport", upload("p.jpg", "scan-p")))
		s.Require().NoError(s.manager.Replace(s.ctx, "sess-3", "selfie", upload("s.jpg", "scan-s")))

		listing, err := s.manager.ListByType(s.ctx, "sess-3")
		s.Require().NoError(err)
		s.Len(listing, 2)
		s.Len(listing["passport"], 1)
		s.Len(listing["selfie"], 1)
	})

	s.Run("sessions are isolated", func() {
		s.Require().NoError(s.manager.Replace(s.ctx, "sess-4", "passport", upload("p.jpg", "scan")))

		listing, err := s.manager.ListByType(s.ctx, "sess-other")
		s.Require().NoError(err)
		s.Empty(listing)
	})
}

func (s *ManagerSuite) TestListByType() {
	s.Require().NoError(s.manager.Replace(s.ctx, "sess-l", "passport", upload("doc.jpg", "content-bytes")))

	listing, err := s.manager.ListByType(s.ctx, "sess-l")
	s.Require().NoError(err)
	s.Require().Len(listing["passport"], 1)
	got := listing["passport"][0]

	s.Run("id is a stable hash of the filename", func() {
		sum := md5.Sum([]byte("doc.jpg"))
		s.Equal(hex.EncodeToString(sum[:]), got.ID)
	})

	s.Run("blob carries the full content inline", func() {
		s.Equal("data:image/jpg;base64,"+base64.StdEncoding.EncodeToString([]byte("content-bytes")), got.Blob)
	})

	s.Run("type carries the stored mime type", func() {
		s.Equal("image/jpeg", got.Type)
	})
}

// brokenBlobStore fails selected operations to exercise the abort paths.
type brokenBlobStore struct {
	files.BlobStore
	failRead   bool
	failRemove bool
}

var errBlob = errors.New("blob backend unavailable")

func (b *brokenBlobStore) Read(ctx context.Context, key string) ([]byte, error) {
	if b.failRead {
		return nil, errBlob
	}
	return b.BlobStore.Read(ctx, key)
}

func (b *brokenBlobStore) Remove(ctx context.Context, key string) error {
	if b.failRemove {
		return errBlob
	}
	return b.BlobStore.Remove(ctx, key)
}

func (s *ManagerSuite) TestFailurePaths() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.Run("read failure fails the whole listing", func() {
		broken := &brokenBlobStore{BlobStore: files.NewMemoryBlobStore()}
		manager := files.NewManager(files.NewMemoryMetaStore(), broken, logger)
		s.Require().NoError(manager.Replace(s.ctx, "sess-r", "passport", upload("p.jpg", "scan")))

		broken.failRead = true
		_, err := manager.ListByType(s.ctx, "sess-r")
		s.Require().Error(err)
		s.Equal(apperrors.CodeStorageRead, apperrors.CodeOf(err))
	})

	s.Run("failed removal aborts the replacement", func() {
		broken := &brokenBlobStore{BlobStore: files.NewMemoryBlobStore()}
		manager := files.NewManager(files.NewMemoryMetaStore(), broken, logger)
		s.Require().NoError(manager.Replace(s.ctx, "sess-w", "passport", upload("old.jpg", "scan-old")))

		broken.failRemove = true
		err := manager.Replace(s.ctx, "sess-w", "passport", upload("new.jpg", "scan-new"))
		s.Require().Error(err)
		s.Equal(apperrors.CodeStorageWrite, apperrors.CodeOf(err))

		// The previous attachment is still the one on record.
		broken.failRemove = false
		listing, err := manager.ListByType(s.ctx, "sess-w")
		s.Require().NoError(err)
		s.Require().Len(listing["passport"], 1)
		s.Equal("old.jpg", listing["passport"][0].Name)
	})
}
