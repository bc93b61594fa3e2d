package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"regflow/internal/session"
)

type MemoryManagerSuite struct {
	suite.Suite
	ctx     context.Context
	manager *session.MemoryManager
}

func TestMemoryManagerSuite(t *testing.T) {
	suite.Run(t, new(MemoryManagerSuite))
}

func (s *MemoryManagerSuite) SetupTest() {
	s.ctx = context.Background()
	s.manager = session.NewMemoryManager(time.Hour)
}

func (s *MemoryManagerSuite) TestTouch() {
	s.Require().NoError(s.manager.Touch(s.ctx, "sess-1"))
	s.True(s.manager.Live("sess-1"))
	s.False(s.manager.Live("sess-unknown"))
}

func (s *MemoryManagerSuite) TestRegenerate() {
	s.Require().NoError(s.manager.Touch(s.ctx, "sess-old"))

	newID, err := s.manager.Regenerate(s.ctx, "sess-old")
	s.Require().NoError(err)

	s.NotEmpty(newID)
	s.NotEqual("sess-old", newID)
	s.True(s.manager.Live(newID))
	s.False(s.manager.Live("sess-old"))
}

func (s *MemoryManagerSuite) TestExpiry() {
	expiring := session.NewMemoryManager(-time.Second)
	s.Require().NoError(expiring.Touch(s.ctx, "sess-1"))
	s.False(expiring.Live("sess-1"))
}

func (s *MemoryManagerSuite) TestNewID() {
	a := session.NewID()
	b := session.NewID()
	s.NotEmpty(a)
	s.NotEqual(a, b)
}
