package errors

import (
	"errors"
	"syscall"
)

// Suggestions maps common errors to helpful suggestions.
var Suggestions = map[error]string{
	// User input errors
	ErrRecordNotFound:     "Use 'renalog record list' to see stored records.",
	ErrMedicationNotFound: "Use 'renalog med list' to see medication IDs.",
	ErrAmbiguousID:        "Type more characters of the ID.",
	ErrInvalidNumber:      "Use a plain decimal number like 61.5.",
	ErrInvalidDate:        "Try formats like '2024-03-01', 'yesterday' or '3 days ago'.",
	ErrDateInFuture:       "Dates cannot be later than today.",
	ErrInvalidClock:       "Use 24-hour HH:MM, for example 08:30 or 21:00.",
	ErrInvalidPressure:    "Enter blood pressure as SYSTOLIC/DIASTOLIC, for example 128/82.",
	ErrInvalidPermission:  "Use one of: grant, deny, reset.",

	// System errors
	ErrDatabaseLocked:   "The reminder daemon may be holding the database. Stop it and try again.",
	ErrPermissionDenied: "Check file permissions in your data directory (~/.local/share/renalog/).",
}

// GetSuggestion returns a suggestion for an error, if available.
// It walks the error chain to find matching suggestions.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	// UserError suggestions are more specific than the sentinel table
	if ue, ok := AsUserError(err); ok && ue.Suggestion != "" {
		return ue.Suggestion
	}

	for knownErr, suggestion := range Suggestions {
		if errors.Is(err, knownErr) {
			return suggestion
		}
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ENOSPC:
			return "Free up disk space and try again."
		case syscall.EACCES, syscall.EPERM:
			return Suggestions[ErrPermissionDenied]
		}
	}

	return ""
}

// FormatError formats an error with its suggestion for terminal display.
func FormatError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if s := GetSuggestion(err); s != "" {
		msg += "\n  Hint: " + s
	}
	return msg
}
