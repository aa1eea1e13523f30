package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renalog/renalog/internal/errors"
)

var refNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty_is_today", "", "2024-03-15"},
		{"today", "today", "2024-03-15"},
		{"iso", "2024-03-01", "2024-03-01"},
		{"iso_whitespace", "  2023-12-31 ", "2023-12-31"},
		{"yesterday", "yesterday", "2024-03-14"},
		{"days_ago", "3 days ago", "2024-03-12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate("date", tt.input, refNow)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDateRejectsFuture(t *testing.T) {
	_, err := ParseDate("date", "2024-03-16", refNow)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrDateInFuture)
}

func TestParseDateInvalid(t *testing.T) {
	_, err := ParseDate("date", "not a date at all", refNow)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidDate)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, DateExamples, pe.Examples)
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"08:00", "08:00"},
		{"8:30", "08:30"},
		{"0830", "08:30"},
		{"23:59", "23:59"},
		{"00:00", "00:00"},
		{"9pm", "21:00"},
		{"7:45am", "07:45"},
		{"12am", "00:00"},
		{"12:15 PM", "12:15"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseClock(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseClockInvalid(t *testing.T) {
	for _, input := range []string{"", "24:00", "12:60", "noon", "13pm", "8"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseClock(input)
			assert.ErrorIs(t, err, errors.ErrInvalidClock)
		})
	}
}

func TestParseOptionalClock(t *testing.T) {
	got, err := ParseOptionalClock("  ")
	require.NoError(t, err)
	assert.Equal(t, "", got)

	got, err = ParseOptionalClock("6:05")
	require.NoError(t, err)
	assert.Equal(t, "06:05", got)
}

func TestParsePositive(t *testing.T) {
	v, err := ParsePositive("weight", "61.5")
	require.NoError(t, err)
	assert.Equal(t, 61.5, v)

	v, err = ParsePositive("weight", "61,5")
	require.NoError(t, err)
	assert.Equal(t, 61.5, v)

	for _, input := range []string{"", "0", "-1", "abc", "NaN", "Inf"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParsePositive("weight", input)
			assert.ErrorIs(t, err, errors.ErrInvalidNumber)
		})
	}
}

func TestParseOptionalNonNegative(t *testing.T) {
	v, err := ParseOptionalNonNegative("fluid removal", "")
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = ParseOptionalNonNegative("fluid removal", "0")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, 0.0, *v)

	_, err = ParseOptionalNonNegative("fluid removal", "-0.5")
	assert.ErrorIs(t, err, errors.ErrInvalidNumber)
}

func TestParsePositiveInt(t *testing.T) {
	v, err := ParsePositiveInt("age", "70")
	require.NoError(t, err)
	assert.Equal(t, 70, v)

	_, err = ParsePositiveInt("age", "0")
	assert.Error(t, err)
	_, err = ParsePositiveInt("age", "7.5")
	assert.Error(t, err)
}

func TestParseNonNegativeInt(t *testing.T) {
	v, err := ParseNonNegativeInt("months", "0")
	require.NoError(t, err)
	assert.Equal(t, 0, v)

	v, err = ParseNonNegativeInt("months", " 14 ")
	require.NoError(t, err)
	assert.Equal(t, 14, v)

	_, err = ParseNonNegativeInt("months", "-1")
	assert.Error(t, err)
	_, err = ParseNonNegativeInt("months", "a year")
	assert.Error(t, err)
}

func TestParsePressure(t *testing.T) {
	sys, dia, err := ParsePressure("128/82")
	require.NoError(t, err)
	assert.Equal(t, 128, sys)
	assert.Equal(t, 82, dia)

	sys, dia, err = ParsePressure(" 145 / 88 mmHg")
	require.NoError(t, err)
	assert.Equal(t, 145, sys)
	assert.Equal(t, 88, dia)

	for _, input := range []string{"", "128", "128-82", "00/80", "1280/82"} {
		t.Run(input, func(t *testing.T) {
			_, _, err := ParsePressure(input)
			assert.ErrorIs(t, err, errors.ErrInvalidPressure)
		})
	}
}

func TestParseErrorToUserError(t *testing.T) {
	ue := NewClockError("25:00").ToUserError()
	assert.Equal(t, "reminder time", ue.Field)
	assert.Contains(t, ue.Suggestion, "Try: 08:00, 8:30, 21:15")
	assert.ErrorIs(t, ue, errors.ErrInvalidClock)

	err := AsUserError(NewPressureError("x"))
	assert.True(t, errors.IsUserError(err))

	formatted := NewDateError("date", "soon").FormatWithExamples()
	assert.Contains(t, formatted, "Valid examples:")
	assert.Contains(t, formatted, "yesterday")
}
