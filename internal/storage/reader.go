package storage

import (
	"time"

	"github.com/renalog/renalog/internal/errors"
	"github.com/renalog/renalog/internal/logging"
	"github.com/renalog/renalog/internal/model"
)

// Reader opens the on-disk database read-only for each call, so a
// long-running process can observe changes made by short-lived commands
// without holding the directory lock between reads.
type Reader struct {
	Path    string
	Retries int
	Delay   time.Duration

	open func(Options) (*DB, error)
}

// NewReader returns a Reader for the database at path.
func NewReader(path string) *Reader {
	return &Reader{
		Path:    path,
		Retries: 3,
		Delay:   200 * time.Millisecond,
		open:    Open,
	}
}

// View opens a read-only handle, runs fn, and closes the handle.
// A locked database is retried a few times before giving up.
func (r *Reader) View(fn func(*DB) error) error {
	var (
		db  *DB
		err error
	)
	for attempt := 0; attempt <= r.Retries; attempt++ {
		db, err = r.open(Options{Path: r.Path, ReadOnly: true})
		if err == nil || !errors.Is(err, errors.ErrDatabaseLocked) {
			break
		}
		logging.DebugLog("database locked, retrying", logging.KeyOperation, "reader", "attempt", attempt+1)
		time.Sleep(r.Delay)
	}
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(db)
}

// ListMedications returns the stored medications.
func (r *Reader) ListMedications() ([]*model.Medication, error) {
	var meds []*model.Medication
	err := r.View(func(db *DB) error {
		var err error
		meds, err = NewMedicationRepo(db).ListMedications()
		return err
	})
	return meds, err
}

// Permission returns the stored notification permission.
func (r *Reader) Permission() (model.Permission, error) {
	perm := model.PermissionUnrequested
	err := r.View(func(db *DB) error {
		var err error
		perm, err = NewPermissionRepo(db).Permission()
		return err
	})
	return perm, err
}
