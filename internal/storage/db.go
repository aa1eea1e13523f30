// Package storage provides the badger-backed persistence layer for renalog.
package storage

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	badger "github.com/dgraph-io/badger/v4"

	"github.com/renalog/renalog/internal/errors"
)

const (
	// AppName is the application name used for data directories.
	AppName = "renalog"

	// MemoryPath selects an in-memory database.
	MemoryPath = ":memory:"
)

// DB wraps a Badger database connection.
type DB struct {
	db   *badger.DB
	path string
}

// Options configures the database connection.
type Options struct {
	// Path is the database directory path. Empty string uses in-memory mode.
	Path string
	// InMemory forces in-memory mode regardless of Path.
	InMemory bool
	// ReadOnly opens an existing database without taking the write lock.
	ReadOnly bool
}

// DefaultPath returns the default database path following XDG spec.
func DefaultPath() string {
	return filepath.Join(xdg.DataHome, AppName, "db")
}

// Open opens or creates a database at the given path.
func Open(opts Options) (*DB, error) {
	var badgerOpts badger.Options

	inMemory := opts.InMemory || opts.Path == "" || opts.Path == MemoryPath
	if inMemory {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if !opts.ReadOnly {
			if err := os.MkdirAll(opts.Path, 0o755); err != nil {
				return nil, errors.NewSystemErrorWithOp("open_database", "cannot create data directory", err)
			}
		}
		badgerOpts = badger.DefaultOptions(opts.Path).WithReadOnly(opts.ReadOnly)
	}

	// Reduce logging noise
	badgerOpts = badgerOpts.WithLoggingLevel(badger.ERROR)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		if isLockError(err) {
			return nil, errors.NewSystemErrorWithOp("open_database", "database is in use", errors.ErrDatabaseLocked)
		}
		return nil, errors.NewSystemErrorWithOp("open_database", "cannot open database", err)
	}

	path := opts.Path
	if inMemory {
		path = ""
	}
	return &DB{db: db, path: path}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// Path returns the on-disk directory, or "" for in-memory databases.
func (d *DB) Path() string {
	return d.path
}

// Badger returns the underlying Badger database for advanced operations.
func (d *DB) Badger() *badger.DB {
	return d.db
}

func isLockError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "Cannot acquire directory lock") ||
		strings.Contains(msg, "Another process is using this Badger database")
}
