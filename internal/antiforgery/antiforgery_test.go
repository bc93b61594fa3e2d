package antiforgery_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"regflow/internal/antiforgery"
	"regflow/pkg/apperrors"
)

type AntiforgerySuite struct {
	suite.Suite
	service *antiforgery.Service
}

func TestAntiforgerySuite(t *testing.T) {
	suite.Run(t, new(AntiforgerySuite))
}

func (s *AntiforgerySuite) SetupTest() {
	s.service = antiforgery.NewService("test-signing-key", time.Hour)
}

func (s *AntiforgerySuite) TestIssueAndValidate() {
	token, err := s.service.Issue("sess-1")
	s.Require().NoError(err)
	s.NotEmpty(token)

	sessionID, err := s.service.Validate(token)
	s.Require().NoError(err)
	s.Equal("sess-1", sessionID)
}

func (s *AntiforgerySuite) TestTokensAreUnique() {
	a, err := s.service.Issue("sess-1")
	s.Require().NoError(err)
	b, err := s.service.Issue("sess-1")
	s.Require().NoError(err)
	s.NotEqual(a, b)
}

func (s *AntiforgerySuite) TestValidateRejections() {
	s.Run("garbage token", func() {
		_, err := s.service.Validate("not-a-token")
		s.Require().Error(err)
		s.Equal(apperrors.CodeBadRequest, apperrors.CodeOf(err))
	})

	s.Run("wrong signing key", func() {
		other := antiforgery.NewService("other-key", time.Hour)
		token, err := other.Issue("sess-1")
		s.Require().NoError(err)

		_, err = s.service.Validate(token)
		s.Require().Error(err)
		s.Equal(apperrors.CodeBadRequest, apperrors.CodeOf(err))
	})

	s.Run("expired token", func() {
		expired := antiforgery.NewService("test-signing-key", -time.Minute)
		token, err := expired.Issue("sess-1")
		s.Require().NoError(err)

		_, err = s.service.Validate(token)
		s.Require().Error(err)
		s.Equal(apperrors.CodeBadRequest, apperrors.CodeOf(err))
	})
}
