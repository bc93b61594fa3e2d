package apperrors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"regflow/pkg/apperrors"
)

func TestWrapKeepsCauseReachable(t *testing.T) {
	cause := errors.New("connection refused")
	err := apperrors.Wrap(apperrors.CodeStorageRead, "find registration", cause)

	assert.ErrorIs(t, err, cause)
	assert.EqualError(t, err, "find registration: connection refused")
	assert.Equal(t, apperrors.CodeStorageRead, apperrors.CodeOf(err))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, apperrors.CodeBadRequest, apperrors.CodeOf(apperrors.New(apperrors.CodeBadRequest, "bad input")))
	assert.Equal(t, apperrors.CodeInternal, apperrors.CodeOf(errors.New("plain")))

	wrapped := fmt.Errorf("outer: %w", apperrors.New(apperrors.CodeNotFound, "missing"))
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(wrapped))
}

func TestIs(t *testing.T) {
	err := apperrors.New(apperrors.CodeNotFound, "missing")
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
	assert.False(t, apperrors.Is(err, apperrors.CodeBadRequest))
	assert.False(t, apperrors.Is(errors.New("plain"), apperrors.CodeNotFound))
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[apperrors.Code]int{
		apperrors.CodeBadRequest:    http.StatusBadRequest,
		apperrors.CodeNotFound:      http.StatusNotFound,
		apperrors.CodeConfiguration: http.StatusInternalServerError,
		apperrors.CodeStorageRead:   http.StatusInternalServerError,
		apperrors.CodeStorageWrite:  http.StatusInternalServerError,
		apperrors.CodeInternal:      http.StatusInternalServerError,
		apperrors.Code("unknown"):   http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, apperrors.ToHTTPStatus(code), string(code))
	}
}
