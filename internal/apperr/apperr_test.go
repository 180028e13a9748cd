package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesKind(t *testing.T) {
	err := NotFound("claim not found")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrForbidden)

	wrapped := fmt.Errorf("approving: %w", err)
	assert.ErrorIs(t, wrapped, ErrNotFound)
}

func TestExternalUnwraps(t *testing.T) {
	cause := errors.New("database is locked")
	err := External("listing items", cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrExternal)
	assert.Equal(t, "listing items: database is locked", err.Error())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindInvalidState, KindOf(InvalidState("claim is not pending")))
	assert.Equal(t, KindExternal, KindOf(errors.New("plain")))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindUnauthorized, http.StatusUnauthorized},
		{KindForbidden, http.StatusForbidden},
		{KindNotFound, http.StatusNotFound},
		{KindValidation, http.StatusBadRequest},
		{KindInvalidState, http.StatusConflict},
		{KindExternal, http.StatusBadGateway},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.kind), "kind %s", tt.kind)
	}
}
