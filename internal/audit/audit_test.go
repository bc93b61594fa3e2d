package audit_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	"regflow/internal/audit"
)

type AuditSuite struct {
	suite.Suite
	ctx       context.Context
	store     *audit.MemoryStore
	publisher *audit.Publisher
}

func TestAuditSuite(t *testing.T) {
	suite.Run(t, new(AuditSuite))
}

func (s *AuditSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = audit.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.publisher = audit.NewPublisher(s.store, nil, "", logger)
}

func (s *AuditSuite) TestNewEvent() {
	event := audit.NewEvent("sess-1", audit.ActionRegistrationCreated, map[string]string{"product_id": "standard"})

	s.NotEmpty(event.ID)
	s.False(event.Timestamp.IsZero())
	s.Equal("sess-1", event.SessionID)
	s.Equal(audit.ActionRegistrationCreated, event.Action)
}

func (s *AuditSuite) TestEmitAppendsToStore() {
	s.Require().NoError(s.publisher.Emit(s.ctx, audit.NewEvent("sess-1", audit.ActionRegistrationCreated, nil)))
	s.Require().NoError(s.publisher.Emit(s.ctx, audit.NewEvent("sess-1", audit.ActionStepAdvanced, nil)))
	s.Require().NoError(s.publisher.Emit(s.ctx, audit.NewEvent("sess-other", audit.ActionRegistrationCreated, nil)))

	events, err := s.publisher.List(s.ctx, "sess-1")
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(audit.ActionRegistrationCreated, events[0].Action)
	s.Equal(audit.ActionStepAdvanced, events[1].Action)
}

func (s *AuditSuite) TestEmitAssignsMissingIdentity() {
	s.Require().NoError(s.publisher.Emit(s.ctx, audit.Event{
		SessionID: "sess-1",
		Action:    audit.ActionSessionRotated,
	}))

	events, err := s.publisher.List(s.ctx, "sess-1")
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.NotEmpty(events[0].ID)
	s.False(events[0].Timestamp.IsZero())
}
