package parser

import (
	"fmt"
	"strings"

	"github.com/renalog/renalog/internal/errors"
)

// ParseError represents an input parsing error with helpful suggestions.
type ParseError struct {
	Input      string
	Field      string
	Message    string
	Examples   []string
	Suggestion string
	Cause      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid %s '%s': %s", e.Field, e.Input, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// FormatWithExamples returns the error message with example suggestions.
func (e *ParseError) FormatWithExamples() string {
	var sb strings.Builder
	sb.WriteString(e.Error())

	if len(e.Examples) > 0 {
		sb.WriteString("\n\nValid examples:\n")
		for _, ex := range e.Examples {
			sb.WriteString("  - ")
			sb.WriteString(ex)
			sb.WriteString("\n")
		}
	}

	if e.Suggestion != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Suggestion)
	}

	return sb.String()
}

// DateExamples provides example date formats.
var DateExamples = []string{
	"2024-03-01",
	"today",
	"yesterday",
	"3 days ago",
	"1 March 2024",
}

// ClockExamples provides example reminder time formats.
var ClockExamples = []string{
	"08:00",
	"8:30",
	"21:15",
	"9pm",
	"7:45am",
}

// PressureExamples provides example blood pressure formats.
var PressureExamples = []string{
	"128/82",
	"145 / 88",
}

// NewDateError creates a date parse error with standard examples.
func NewDateError(field, input string) *ParseError {
	return &ParseError{
		Input:      input,
		Field:      field,
		Message:    "could not parse date",
		Examples:   DateExamples,
		Suggestion: "Use YYYY-MM-DD or natural language like 'yesterday'.",
		Cause:      errors.ErrInvalidDate,
	}
}

// NewFutureDateError reports a date later than today.
func NewFutureDateError(field, input string) *ParseError {
	return &ParseError{
		Input:      input,
		Field:      field,
		Message:    "date is later than today",
		Suggestion: "Enter today's date or an earlier one.",
		Cause:      errors.ErrDateInFuture,
	}
}

// NewClockError creates a reminder time parse error with standard examples.
func NewClockError(input string) *ParseError {
	return &ParseError{
		Input:      input,
		Field:      "reminder time",
		Message:    "expected a 24-hour time of day",
		Examples:   ClockExamples,
		Suggestion: "Reminder times are HH:MM on a 24-hour clock.",
		Cause:      errors.ErrInvalidClock,
	}
}

// NewPressureError creates a blood pressure parse error with standard examples.
func NewPressureError(input string) *ParseError {
	return &ParseError{
		Input:      input,
		Field:      "blood pressure",
		Message:    "expected SYSTOLIC/DIASTOLIC",
		Examples:   PressureExamples,
		Suggestion: "Both values are whole numbers in mmHg.",
		Cause:      errors.ErrInvalidPressure,
	}
}

// NewNumberError reports a value that is not a usable positive number.
func NewNumberError(field, input, message string) *ParseError {
	return &ParseError{
		Input:      input,
		Field:      field,
		Message:    message,
		Suggestion: "Use a plain decimal number like 61.5.",
		Cause:      errors.ErrInvalidNumber,
	}
}

// ToUserError converts a ParseError to a UserError for consistent handling.
func (e *ParseError) ToUserError() *errors.UserError {
	suggestion := e.Suggestion
	if len(e.Examples) > 0 {
		examples := fmt.Sprintf("Try: %s", strings.Join(e.Examples[:min(3, len(e.Examples))], ", "))
		if suggestion == "" {
			suggestion = examples
		} else {
			suggestion += " " + examples
		}
	}

	return errors.NewUserErrorWithField(e.Field, e.Input, e.Message, suggestion).WithCause(e.Cause)
}

// AsUserError converts parse errors to UserErrors and leaves others untouched.
func AsUserError(err error) error {
	if pe, ok := err.(*ParseError); ok {
		return pe.ToUserError()
	}
	return err
}
