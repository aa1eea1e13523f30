// Package daemon runs the foreground reminder process: PID and state files,
// signal handling, the reminder scheduler and the loopback health endpoint.
package daemon

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/adrg/xdg"
)

const (
	// AppName is the application name used for runtime directories.
	AppName = "renalog"
	// PIDFileName is the PID file name.
	PIDFileName = "renalog.pid"
)

// Errors
var (
	ErrNotRunning     = errors.New("daemon is not running")
	ErrAlreadyRunning = errors.New("daemon is already running")
	ErrNeedsDiskDB    = errors.New("the daemon needs an on-disk database")
)

// PIDFile is the single-instance lock for the reminder daemon. Line one
// holds the owner's PID, line two the database it sends reminders for.
type PIDFile struct {
	path string
}

// Owner describes the process holding the PID file.
type Owner struct {
	PID      int
	Database string
}

// NewPIDFile creates a PID file at the default location.
func NewPIDFile() *PIDFile {
	return NewPIDFileAt(GetPIDFilePath())
}

// NewPIDFileAt creates a PID file for path.
func NewPIDFileAt(path string) *PIDFile {
	return &PIDFile{path: path}
}

// GetPIDFilePath returns the default PID file path. The state dir is used
// because XDG_RUNTIME_DIR is often missing on macOS.
func GetPIDFilePath() string {
	return filepath.Join(xdg.StateHome, AppName, PIDFileName)
}

// Acquire claims the file for the current process. Creation is exclusive, so
// two daemons started together cannot both win. A file left by a dead
// process is reclaimed once.
func (p *PIDFile) Acquire(database string) error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("failed to create PID directory: %w", err)
	}

	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(p.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			_, werr := fmt.Fprintf(f, "%d\n%s\n", os.Getpid(), database)
			if cerr := f.Close(); werr == nil {
				werr = cerr
			}
			if werr != nil {
				_ = os.Remove(p.path)
				return fmt.Errorf("failed to write PID file: %w", werr)
			}
			return nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("failed to create PID file: %w", err)
		}

		if owner, rerr := p.Owner(); rerr == nil && IsProcessRunning(owner.PID) {
			return fmt.Errorf("%w (PID: %d)", ErrAlreadyRunning, owner.PID)
		}
		if err := p.Remove(); err != nil {
			return err
		}
	}
	return ErrAlreadyRunning
}

// Owner reads the file. A missing file is ErrNotRunning.
func (p *PIDFile) Owner() (Owner, error) {
	f, err := os.Open(p.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Owner{}, ErrNotRunning
		}
		return Owner{}, fmt.Errorf("failed to read PID file: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	var lines []string
	for sc.Scan() && len(lines) < 2 {
		lines = append(lines, strings.TrimSpace(sc.Text()))
	}
	if err := sc.Err(); err != nil {
		return Owner{}, fmt.Errorf("failed to read PID file: %w", err)
	}
	if len(lines) == 0 {
		return Owner{}, errors.New("empty PID file")
	}

	pid, err := strconv.Atoi(lines[0])
	if err != nil {
		return Owner{}, fmt.Errorf("invalid PID in file: %w", err)
	}
	owner := Owner{PID: pid}
	if len(lines) > 1 {
		owner.Database = lines[1]
	}
	return owner, nil
}

// Remove deletes the file. Removing a missing file is not an error.
func (p *PIDFile) Remove() error {
	if err := os.Remove(p.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// Exists reports whether the file is present, live owner or not.
func (p *PIDFile) Exists() bool {
	_, err := os.Stat(p.path)
	return err == nil
}

// Running returns the owner if it is still alive.
func (p *PIDFile) Running() (Owner, bool) {
	owner, err := p.Owner()
	if err != nil || !IsProcessRunning(owner.PID) {
		return Owner{}, false
	}
	return owner, true
}

// IsRunning checks if the daemon is currently running.
func (p *PIDFile) IsRunning() bool {
	_, ok := p.Running()
	return ok
}

// GetRunningPID returns the PID if the daemon is running, or 0 if not.
func (p *PIDFile) GetRunningPID() int {
	owner, _ := p.Running()
	return owner.PID
}

// Path returns the PID file path.
func (p *PIDFile) Path() string {
	return p.path
}

// IsProcessRunning checks if a process with the given PID is running.
func IsProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	// FindProcess always succeeds on Unix; signal 0 checks liveness
	return process.Signal(syscall.Signal(0)) == nil
}
