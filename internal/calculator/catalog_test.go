package calculator_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"regflow/internal/calculator"
	"regflow/pkg/apperrors"
)

type CatalogSuite struct {
	suite.Suite
	catalog *calculator.Catalog
}

func TestCatalogSuite(t *testing.T) {
	suite.Run(t, new(CatalogSuite))
}

func (s *CatalogSuite) SetupTest() {
	catalog, err := calculator.New(calculator.Default())
	s.Require().NoError(err)
	s.catalog = catalog
}

func (s *CatalogSuite) TestNewValidation() {
	s.Run("no default entry", func() {
		_, err := calculator.New([]calculator.Config{
			{ProductID: "a"},
			{ProductID: "b"},
		})
		s.Require().Error(err)
		s.Equal(apperrors.CodeConfiguration, apperrors.CodeOf(err))
	})

	s.Run("two default entries", func() {
		_, err := calculator.New([]calculator.Config{
			{ProductID: "a", Default: true},
			{ProductID: "b", Default: true},
		})
		s.Require().Error(err)
		s.Equal(apperrors.CodeConfiguration, apperrors.CodeOf(err))
	})

	s.Run("exactly one default", func() {
		_, err := calculator.New([]calculator.Config{
			{ProductID: "a", Default: true},
			{ProductID: "b"},
		})
		s.NoError(err)
	})
}

func (s *CatalogSuite) TestResolve() {
	s.Run("known product", func() {
		s.Equal("extended", s.catalog.Resolve("extended").ProductID)
	})

	s.Run("empty id falls back to default", func() {
		s.Equal("standard", s.catalog.Resolve("").ProductID)
	})

	s.Run("unknown id falls back to default", func() {
		s.Equal("standard", s.catalog.Resolve("no-such-product").ProductID)
	})
}

func (s *CatalogSuite) TestDeriveCreationFields() {
	int64p := func(v int64) *int64 { return &v }
	intp := func(v int) *int { return &v }

	s.Run("no requested values uses defaults", func() {
		got := s.catalog.DeriveCreationFields("standard", nil, nil)
		s.Equal("standard", got.ProductID)
		s.Equal(int64(10000), *got.Sum)
		s.Equal(10, *got.Term)
	})

	s.Run("in-range requested values win", func() {
		got := s.catalog.DeriveCreationFields("standard", int64p(2500), intp(7))
		s.Equal(int64(2500), *got.Sum)
		s.Equal(7, *got.Term)
	})

	s.Run("bounds are inclusive", func() {
		got := s.catalog.DeriveCreationFields("standard", int64p(30000), intp(5))
		s.Equal(int64(30000), *got.Sum)
		s.Equal(5, *got.Term)
	})

	s.Run("out-of-range values fall back to defaults, not clamped", func() {
		got := s.catalog.DeriveCreationFields("standard", int64p(31000), intp(4))
		s.Equal(int64(10000), *got.Sum)
		s.Equal(10, *got.Term)
	})

	s.Run("unknown product derives from the default entry", func() {
		got := s.catalog.DeriveCreationFields("no-such-product", int64p(50000), nil)
		s.Equal("standard", got.ProductID)
		// 50000 is outside standard's bounds, so the default sum applies.
		s.Equal(int64(10000), *got.Sum)
	})
}

func (s *CatalogSuite) TestPublicView() {
	view := s.catalog.PublicView(s.catalog.Resolve("standard"))

	s.Equal("standard", view["productId"])
	s.Equal(int64(2000), view["sumMin"])
	s.Equal(int64(30000), view["sumMax"])
	s.Equal(int64(10000), view["sumDefault"])
	s.Equal(5, view["termMin"])
	s.Equal(30, view["termMax"])
	s.Equal(10, view["termDefault"])
	s.NotContains(view, "default")
}
