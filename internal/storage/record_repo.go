package storage

import (
	"time"

	"github.com/google/uuid"

	"github.com/renalog/renalog/internal/model"
)

// RecordRepo provides operations for HealthRecord entities.
type RecordRepo struct {
	db *DB
}

// NewRecordRepo creates a new record repository.
func NewRecordRepo(db *DB) *RecordRepo {
	return &RecordRepo{db: db}
}

// Create stores a new record with a generated key.
func (r *RecordRepo) Create(record *model.HealthRecord) error {
	if record.Key == "" {
		record.Key = model.GenerateRecordKey(uuid.New().String())
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	return r.db.Set(record)
}

// Get retrieves a record by key.
func (r *RecordRepo) Get(key string) (*model.HealthRecord, error) {
	record := &model.HealthRecord{}
	if err := r.db.Get(key, record); err != nil {
		return nil, err
	}
	return record, nil
}

// List retrieves all records in chronological order. Undecodable entries are
// returned as skipped keys.
func (r *RecordRepo) List() ([]*model.HealthRecord, []string, error) {
	res, err := GetAllByPrefix(r.db, model.PrefixRecord+":", func() *model.HealthRecord {
		return &model.HealthRecord{}
	})
	if err != nil {
		return nil, nil, err
	}
	model.SortRecords(res.Items)
	return res.Items, res.Skipped, nil
}
