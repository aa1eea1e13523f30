package storage

import (
	"encoding/json"
	"errors"

	"github.com/renalog/renalog/internal/model"
)

// PermissionRepo stores the notification permission state.
type PermissionRepo struct {
	db *DB
}

// NewPermissionRepo creates a new permission repository.
func NewPermissionRepo(db *DB) *PermissionRepo {
	return &PermissionRepo{db: db}
}

// Permission returns the stored state. Missing or invalid values read as
// unrequested.
func (r *PermissionRepo) Permission() (model.Permission, error) {
	perm := &model.NotifyPermission{}
	err := r.db.Get(model.KeyNotifyPermission, perm)
	if err != nil {
		if IsErrKeyNotFound(err) || isDecodeError(err) {
			return model.PermissionUnrequested, nil
		}
		return "", err
	}
	if !perm.State.IsValid() {
		return model.PermissionUnrequested, nil
	}
	return perm.State, nil
}

// SetPermission stores a new state.
func (r *PermissionRepo) SetPermission(p model.Permission) error {
	return r.db.Set(&model.NotifyPermission{State: p})
}

func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}
