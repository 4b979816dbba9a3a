package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(cause, CodeStorage, "failed to store file")

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.True(t, HasCode(err, CodeStorage))
	assert.Equal(t, "failed to store file: disk full", err.Error())
	assert.Nil(t, Wrap(nil, CodeInternal, "ignored"))
}

func TestHasCodeUsesOutermostError(t *testing.T) {
	inner := New(CodeNotFound, "paper not found")
	outer := Wrap(inner, CodeInternal, "failed to load paper")

	assert.True(t, HasCode(outer, CodeInternal))
	assert.False(t, HasCode(outer, CodeNotFound))
	assert.True(t, HasCode(fmt.Errorf("context: %w", inner), CodeNotFound))
	assert.False(t, HasCode(errors.New("plain"), CodeInternal))
}

func TestToHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeInvalidInput, http.StatusBadRequest},
		{CodeBadRequest, http.StatusBadRequest},
		{CodeInvalidState, http.StatusConflict},
		{CodeConflict, http.StatusConflict},
		{CodeNotFound, http.StatusNotFound},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeStorage, http.StatusBadGateway},
		{CodeTimeout, http.StatusGatewayTimeout},
		{CodeInternal, http.StatusInternalServerError},
		{Code("invariant_violation"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, ToHTTPStatus(tt.code))
		})
	}
}

func TestClientMessage(t *testing.T) {
	assert.Equal(t, "title is required", ClientMessage(New(CodeValidation, "title is required")))
	assert.Empty(t, ClientMessage(New(CodeInternal, "db exploded")))
	assert.Empty(t, ClientMessage(errors.New("raw")))
}
