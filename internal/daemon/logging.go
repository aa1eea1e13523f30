package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// DefaultMaxLogSize is the size at which the daemon log is rotated.
const DefaultMaxLogSize = 5 << 20

// LogFile is an append-only daemon log that rotates to a single ".old"
// backup. It is the io.Writer handed to the structured logger when the
// daemon runs detached from a terminal.
type LogFile struct {
	path    string
	maxSize int64

	mu   sync.Mutex
	file *os.File
	size int64
}

// OpenLogFile opens path for appending, creating its directory. A
// non-positive maxSize disables rotation.
func OpenLogFile(path string, maxSize int64) (*LogFile, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	l := &LogFile{path: path, maxSize: maxSize}
	if err := l.open(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *LogFile) open() error {
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return err
	}
	l.file = file
	l.size = info.Size()
	return nil
}

// Write appends p, rotating first when the file has reached its size limit.
func (l *LogFile) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return 0, os.ErrClosed
	}
	if l.maxSize > 0 && l.size+int64(len(p)) > l.maxSize && l.size > 0 {
		if err := l.rotate(); err != nil {
			return 0, err
		}
	}

	n, err := l.file.Write(p)
	l.size += int64(n)
	return n, err
}

// rotate moves the current log to path.old and starts a new file.
func (l *LogFile) rotate() error {
	l.file.Close()
	l.file = nil

	backupPath := l.path + ".old"
	os.Remove(backupPath)
	if err := os.Rename(l.path, backupPath); err != nil {
		if openErr := l.open(); openErr != nil {
			return openErr
		}
		return err
	}
	return l.open()
}

// Path returns the log file path.
func (l *LogFile) Path() string {
	return l.path
}

// Close closes the log file.
func (l *LogFile) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
