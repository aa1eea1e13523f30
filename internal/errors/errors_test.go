package errors

import (
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// UserError Tests
// =============================================================================

func TestNewUserError(t *testing.T) {
	err := NewUserError("invalid input", "try again")
	assert.NotNil(t, err)
	assert.Equal(t, "invalid input", err.Message)
	assert.Equal(t, "try again", err.Suggestion)
}

func TestUserErrorError(t *testing.T) {
	t.Run("without_field", func(t *testing.T) {
		err := NewUserError("invalid input", "")
		assert.Equal(t, "invalid input", err.Error())
	})

	t.Run("with_field", func(t *testing.T) {
		err := NewUserErrorWithField("weight", "abc", "invalid weight", "")
		assert.Equal(t, "invalid weight: 'abc'", err.Error())
	})
}

func TestUserErrorWithCause(t *testing.T) {
	err := NewUserErrorWithField("date", "tomorrow", "date is in the future", "").
		WithCause(ErrDateInFuture)

	assert.True(t, errors.Is(err, ErrDateInFuture))
	assert.True(t, Is(fmt.Errorf("record: %w", err), ErrDateInFuture))
}

func TestIsUserError(t *testing.T) {
	t.Run("wrapped_user_error", func(t *testing.T) {
		wrapped := fmt.Errorf("context: %w", NewUserError("test", ""))
		assert.True(t, IsUserError(wrapped))
	})

	t.Run("not_user_error", func(t *testing.T) {
		assert.False(t, IsUserError(errors.New("plain error")))
	})

	t.Run("nil_error", func(t *testing.T) {
		assert.False(t, IsUserError(nil))
	})
}

// =============================================================================
// SystemError Tests
// =============================================================================

func TestSystemError(t *testing.T) {
	cause := errors.New("disk failure")

	err := NewSystemErrorWithOp("save_record", "failed to write", cause)
	assert.Equal(t, "failed to write during save_record", err.Error())
	assert.True(t, errors.Is(err, cause))
	assert.True(t, IsSystemError(fmt.Errorf("wrap: %w", err)))

	se, ok := AsSystemError(err)
	assert.True(t, ok)
	assert.Equal(t, "save_record", se.Op)

	plain := NewSystemError("failed", nil)
	assert.Equal(t, "failed", plain.Error())
}

// =============================================================================
// Wrap Tests
// =============================================================================

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "ctx"))
	assert.Nil(t, Wrapf(nil, "ctx %d", 1))

	err := Wrap(ErrInvalidDate, "parse")
	assert.Equal(t, "parse: invalid date", err.Error())
	assert.True(t, errors.Is(err, ErrInvalidDate))

	err = Wrapf(ErrInvalidClock, "medication %s", "abc")
	assert.Equal(t, "medication abc: invalid reminder time", err.Error())
}

// =============================================================================
// Suggestion Tests
// =============================================================================

func TestGetSuggestion(t *testing.T) {
	assert.Empty(t, GetSuggestion(nil))
	assert.Empty(t, GetSuggestion(errors.New("unknown")))

	assert.Equal(t, Suggestions[ErrInvalidClock], GetSuggestion(Wrap(ErrInvalidClock, "x")))

	ue := NewUserError("bad", "do this instead").WithCause(ErrInvalidClock)
	assert.Equal(t, "do this instead", GetSuggestion(ue))

	assert.Equal(t, Suggestions[ErrPermissionDenied], GetSuggestion(fmt.Errorf("open: %w", syscall.EACCES)))
}

func TestFormatError(t *testing.T) {
	assert.Empty(t, FormatError(nil))
	assert.Equal(t, "boom", FormatError(errors.New("boom")))

	got := FormatError(Wrap(ErrInvalidDate, "record date"))
	assert.Contains(t, got, "record date: invalid date")
	assert.Contains(t, got, "Hint:")
}
