//go:build integration

package files_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	"regflow/internal/files"
	"regflow/pkg/testutil/containers"
)

type PostgresMetaStoreSuite struct {
	suite.Suite
	ctx      context.Context
	postgres *containers.PostgresContainer
	store    *files.PostgresMetaStore
}

func TestPostgresMetaStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresMetaStoreSuite))
}

func (s *PostgresMetaStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = files.NewPostgresMetaStore(s.postgres.Pool)
	s.Require().NoError(s.store.InitSchema(s.ctx))
}

func (s *PostgresMetaStoreSuite) SetupTest() {
	_, err := s.postgres.Pool.Exec(s.ctx, `TRUNCATE attachments`)
	s.Require().NoError(err)
}

func (s *PostgresMetaStoreSuite) TestSaveAndList() {
	att := files.Attachment{
		ID:       "blob-1",
		Type:     "passport",
		FileName: "p.jpg",
		MimeType: "image/jpeg",
		Size:     4,
	}
	s.Require().NoError(s.store.Save(s.ctx, "sess-1", att))

	listed, err := s.store.List(s.ctx, "sess-1")
	s.Require().NoError(err)
	s.Require().Len(listed, 1)
	s.Equal(att, listed[0])

	listed, err = s.store.List(s.ctx, "sess-other")
	s.Require().NoError(err)
	s.Empty(listed)
}

func (s *PostgresMetaStoreSuite) TestListOrdersByCreation() {
	s.Require().NoError(s.store.Save(s.ctx, "sess-1", files.Attachment{ID: "blob-a", Type: "passport", FileName: "a.jpg"}))
	s.Require().NoError(s.store.Save(s.ctx, "sess-1", files.Attachment{ID: "blob-b", Type: "selfie", FileName: "b.jpg"}))

	listed, err := s.store.List(s.ctx, "sess-1")
	s.Require().NoError(err)
	s.Require().Len(listed, 2)
	s.Equal("blob-a", listed[0].ID)
	s.Equal("blob-b", listed[1].ID)
}

func (s *PostgresMetaStoreSuite) TestDelete() {
	s.Require().NoError(s.store.Save(s.ctx, "sess-1", files.Attachment{ID: "blob-1", Type: "passport", FileName: "p.jpg"}))

	s.Require().NoError(s.store.Delete(s.ctx, "sess-1", "blob-1"))

	listed, err := s.store.List(s.ctx, "sess-1")
	s.Require().NoError(err)
	s.Empty(listed)

	s.Run("deleting an unknown id is a no-op", func() {
		s.NoError(s.store.Delete(s.ctx, "sess-1", "blob-missing"))
	})
}

func (s *PostgresMetaStoreSuite) TestManagerReplaceOverPostgres() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	manager := files.NewManager(s.store, files.NewMemoryBlobStore(), logger)

	up := func(name, content string) files.Upload {
		return files.Upload{FileName: name, MimeType: "image/jpeg", Content: []byte(content)}
	}
	s.Require().NoError(manager.Replace(s.ctx, "sess-m", "passport", up("a.jpg", "v1")))
	s.Require().NoError(manager.Replace(s.ctx, "sess-m", "passport", up("b.jpg", "v2")))

	listing, err := manager.ListByType(s.ctx, "sess-m")
	s.Require().NoError(err)
	s.Require().Len(listing["passport"], 1)
	s.Equal("b.jpg", listing["passport"][0].Name)
}
