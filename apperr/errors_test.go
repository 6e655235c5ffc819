package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindStatus(t *testing.T) {
	cases := map[Kind]int{
		KindNotFound:         http.StatusNotFound,
		KindInvalidInput:     http.StatusBadRequest,
		KindInvalidOperation: http.StatusBadRequest,
		KindConflict:         http.StatusBadRequest,
		KindUnauthorized:     http.StatusUnauthorized,
		KindForbidden:        http.StatusForbidden,
		KindInternal:         http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, kind.Status(), kind.String())
	}
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("toggle: %w", NotFound("Video not found with id of %s", "abc"))

	assert.Equal(t, KindNotFound, KindOf(err))
	assert.True(t, Is(err, KindNotFound))
	assert.False(t, Is(err, KindInvalidInput))
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestInternalHidesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal(cause)

	assert.Equal(t, "Server Error", err.Message)
	assert.ErrorIs(t, err, cause)
}
