package storage

import (
	"time"

	"github.com/renalog/renalog/internal/model"
)

// ProfileRepo stores the singleton patient profile.
type ProfileRepo struct {
	db *DB
}

// NewProfileRepo creates a new profile repository.
func NewProfileRepo(db *DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// Get returns the stored profile. A missing or unreadable profile yields an
// empty one; the second return value reports whether the stored value was
// unreadable.
func (r *ProfileRepo) Get() (*model.PatientProfile, bool, error) {
	profile := &model.PatientProfile{}
	err := r.db.Get(model.KeyProfile, profile)
	switch {
	case err == nil:
		return profile, false, nil
	case IsErrKeyNotFound(err):
		return &model.PatientProfile{}, false, nil
	case isDecodeError(err):
		return &model.PatientProfile{}, true, nil
	default:
		return nil, false, err
	}
}

// Save replaces the stored profile.
func (r *ProfileRepo) Save(profile *model.PatientProfile) error {
	profile.UpdatedAt = time.Now()
	return r.db.Set(profile)
}
