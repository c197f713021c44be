package domain

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound,
		ErrConflict,
		ErrValidation,
		ErrUnavailable,
		ErrMalformedResponse,
		ErrPersistence,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j {
				assert.NotErrorIs(t, a, b,
					"sentinels should be distinct: %v vs %v", a, b)
			}
		}
	}
}

func TestNotFoundError(t *testing.T) {
	tests := []struct {
		name        string
		entity      string
		id          string
		expectedMsg string
	}{
		{
			name:        "with entity and key",
			entity:      "key",
			id:          "quotes",
			expectedMsg: `key "quotes" not found`,
		},
		{
			name:        "with entity only",
			entity:      "quote",
			expectedMsg: "quote not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewNotFoundError(tt.entity, tt.id)

			assert.Equal(t, tt.expectedMsg, err.Error())
			require.ErrorIs(t, err, ErrNotFound)

			var notFound *NotFoundError
			require.ErrorAs(t, err, &notFound)
			assert.Equal(t, tt.entity, notFound.Entity)
			assert.Equal(t, tt.id, notFound.ID)
		})
	}
}

func TestConflictError(t *testing.T) {
	err := NewConflictError("quote", "text already exists")

	assert.Equal(t, "quote conflict: text already exists", err.Error())
	require.ErrorIs(t, err, ErrConflict)

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "quote", conflict.Entity)
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		expectedMsg string
	}{
		{"with field", NewValidationError("text", "must not be empty"), "validation failed for text: must not be empty"},
		{"without field", NewValidationError("", "not an array"), "validation failed: not an array"},
		{"with value", NewValidationErrorWithValue("category", "must not be empty", "x"), "validation failed for category: must not be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedMsg, tt.err.Error())
			require.ErrorIs(t, tt.err, ErrValidation)
		})
	}
}

func TestUnavailableError(t *testing.T) {
	assert.Equal(t, `service "remote" unavailable: connection refused`,
		NewUnavailableError("remote", "connection refused").Error())
	assert.Equal(t, `service "remote" unavailable`, NewUnavailableError("remote", "").Error())
}

func TestMalformedResponseError(t *testing.T) {
	err := NewMalformedResponseError("remote", "expected array")

	assert.Equal(t, `service "remote" returned malformed response: expected array`, err.Error())
	require.ErrorIs(t, err, ErrMalformedResponse)
	assert.NotErrorIs(t, err, ErrUnavailable)
}

func TestPersistenceError(t *testing.T) {
	cause := fs.ErrPermission
	err := NewPersistenceError("write", "quotes", cause)

	assert.Equal(t, `write "quotes": permission denied`, err.Error())
	require.ErrorIs(t, err, ErrPersistence)
	require.ErrorIs(t, err, fs.ErrPermission, "underlying cause stays reachable")

	var pe *PersistenceError
	require.ErrorAs(t, fmt.Errorf("save: %w", err), &pe)
	assert.Equal(t, "quotes", pe.Key)
}

func TestIsHelpers(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		isFunc   func(error) bool
		expected bool
	}{
		{"IsNotFound with NotFoundError", NewNotFoundError("key", "quotes"), IsNotFound, true},
		{"IsNotFound with wrapped", fmt.Errorf("wrapped: %w", ErrNotFound), IsNotFound, true},
		{"IsNotFound with nil", nil, IsNotFound, false},

		{"IsConflict with ConflictError", NewConflictError("quote", "exists"), IsConflict, true},
		{"IsConflict with other error", ErrNotFound, IsConflict, false},

		{"IsValidation with ValidationError", NewValidationError("text", "empty"), IsValidation, true},
		{"IsValidation with nil", nil, IsValidation, false},

		{"IsUnavailable with UnavailableError", NewUnavailableError("remote", "timeout"), IsUnavailable, true},
		{"IsUnavailable with malformed", NewMalformedResponseError("remote", "bad"), IsUnavailable, false},

		{"IsMalformedResponse with wrapped", fmt.Errorf("fetch: %w", NewMalformedResponseError("remote", "bad")), IsMalformedResponse, true},
		{"IsMalformedResponse with other error", errors.New("boom"), IsMalformedResponse, false},

		{"IsPersistence with PersistenceError", NewPersistenceError("read", "quotes", errors.New("io")), IsPersistence, true},
		{"IsPersistence with sentinel", ErrPersistence, IsPersistence, true},
		{"IsPersistence with other error", ErrValidation, IsPersistence, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.isFunc(tt.err))
		})
	}
}
