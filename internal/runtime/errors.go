package runtime

import (
	"errors"
	"fmt"
	"strings"
	"syscall"

	apperrors "github.com/renalog/renalog/internal/errors"
)

// ErrDiskFull marks writes that failed for lack of space.
var ErrDiskFull = errors.New("disk full: unable to write to database")

// Process exit codes.
const (
	ExitOK     = 0
	ExitSystem = 1
	ExitUsage  = 2
	ExitLocked = 3
)

// ExitCode maps an error to the process exit status. Input errors the user
// can fix exit with ExitUsage; a database held by the daemon exits with
// ExitLocked.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case apperrors.Is(err, apperrors.ErrDatabaseLocked):
		return ExitLocked
	case apperrors.IsUserError(err):
		return ExitUsage
	default:
		return ExitSystem
	}
}

// FormatError formats an error with its suggestion. Disk-full conditions
// get their own hint since nothing in the error chain carries one.
func FormatError(err error) string {
	if err == nil {
		return ""
	}
	if IsDiskFullError(err) && apperrors.GetSuggestion(err) == "" {
		return err.Error() + "\n  Hint: Free up disk space and try again. Nothing was saved."
	}
	return apperrors.FormatError(err)
}

// DiskFullError represents a disk full condition with additional context.
type DiskFullError struct {
	Op      string // The operation that failed (e.g., "write", "sync")
	Path    string // The path involved, if known
	wrapped error  // The underlying error
}

func (e *DiskFullError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("disk full during %s on %s: %v", e.Op, e.Path, e.wrapped)
	}
	return fmt.Sprintf("disk full during %s: %v", e.Op, e.wrapped)
}

func (e *DiskFullError) Unwrap() error {
	return ErrDiskFull
}

// NewDiskFullError creates a new DiskFullError.
func NewDiskFullError(op, path string, err error) *DiskFullError {
	return &DiskFullError{
		Op:      op,
		Path:    path,
		wrapped: err,
	}
}

// IsDiskFullError checks if an error indicates a disk full condition.
// It checks for ENOSPC (Linux/macOS) and common disk full error patterns.
func IsDiskFullError(err error) bool {
	if err == nil {
		return false
	}

	// Check if it's already our DiskFullError
	var diskFullErr *DiskFullError
	if errors.As(err, &diskFullErr) {
		return true
	}

	// Check if it's our sentinel error
	if errors.Is(err, ErrDiskFull) {
		return true
	}

	// Check for ENOSPC (no space left on device)
	var errno syscall.Errno
	if errors.As(err, &errno) {
		if errno == syscall.ENOSPC {
			return true
		}
	}

	// Check error message for disk full patterns
	errStr := strings.ToLower(err.Error())
	diskFullPatterns := []string{
		"no space left on device",
		"disk full",
		"enospc",
		"not enough space",
		"insufficient disk space",
		"out of disk space",
	}

	for _, pattern := range diskFullPatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}

// WrapDiskFullError wraps an error as a DiskFullError if it indicates disk full.
// If the error is not a disk full error, it returns the original error unchanged.
func WrapDiskFullError(err error, op, path string) error {
	if err == nil {
		return nil
	}
	if IsDiskFullError(err) {
		return NewDiskFullError(op, path, err)
	}
	return err
}
