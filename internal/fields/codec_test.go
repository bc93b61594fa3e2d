package fields_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"regflow/internal/fields"
)

type CodecSuite struct {
	suite.Suite
}

func TestCodecSuite(t *testing.T) {
	suite.Run(t, new(CodecSuite))
}

func (s *CodecSuite) TestToInternal() {
	cases := []struct {
		name     string
		external string
		want     string
	}{
		{"single word", "phone", "phone"},
		{"two words", "firstName", "first_name"},
		{"three words", "phoneVerifiedAt", "phone_verified_at"},
		{"already snake", "first_name", "first_name"},
		{"empty", "", ""},
		{"digits pass through", "address2", "address2"},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.Equal(tc.want, fields.ToInternal(tc.external))
		})
	}
}

func (s *CodecSuite) TestToExternal() {
	cases := []struct {
		name     string
		internal string
		want     string
	}{
		{"single word", "phone", "phone"},
		{"two words", "first_name", "firstName"},
		{"three words", "phone_verified_at", "phoneVerifiedAt"},
		{"already camel", "firstName", "firstName"},
		{"empty", "", ""},
		{"double underscore", "a__b", "aB"},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.Equal(tc.want, fields.ToExternal(tc.internal))
		})
	}
}

func (s *CodecSuite) TestRoundTrip() {
	for _, name := range []string{"first_name", "phone_verified_at", "sum", "current_step", "ref_id"} {
		s.Run(name, func() {
			s.Equal(name, fields.ToInternal(fields.ToExternal(name)))
		})
	}
}

func (s *CodecSuite) TestProject() {
	s.Run("drops excluded keys and renames the rest", func() {
		in := map[string]any{
			"first_name": "Ada",
			"session_id": "s-1",
			"sum":        int64(5000),
		}
		out := fields.Project(in, []string{"session_id"})

		s.Equal(map[string]any{
			"firstName": "Ada",
			"sum":       int64(5000),
		}, out)
	})

	s.Run("replaces nil with empty string", func() {
		out := fields.Project(map[string]any{"order_id": nil}, nil)
		s.Equal(map[string]any{"orderId": ""}, out)
	})

	s.Run("projection of a projection is a no-op", func() {
		in := map[string]any{
			"first_name": "Ada",
			"order_id":   nil,
			"session_id": "s-1",
		}
		excluded := []string{"session_id"}

		once := fields.Project(in, excluded)
		twice := fields.Project(once, excluded)
		s.Equal(once, twice)
	})

	s.Run("does not mutate the input", func() {
		in := map[string]any{"first_name": "Ada", "order_id": nil}
		fields.Project(in, nil)
		s.Nil(in["order_id"])
		s.Contains(in, "first_name")
	})
}
