package storage

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/renalog/renalog/internal/errors"
	"github.com/renalog/renalog/internal/model"
)

// MedicationRepo provides operations for Medication entities.
type MedicationRepo struct {
	db *DB
}

// NewMedicationRepo creates a new medication repository.
func NewMedicationRepo(db *DB) *MedicationRepo {
	return &MedicationRepo{db: db}
}

// Create stores a new medication with a generated key.
func (r *MedicationRepo) Create(med *model.Medication) error {
	if med.Key == "" {
		med.Key = model.GenerateMedicationKey(uuid.New().String())
	}
	return r.db.Set(med)
}

// Get retrieves a medication by key.
func (r *MedicationRepo) Get(key string) (*model.Medication, error) {
	med := &model.Medication{}
	if err := r.db.Get(key, med); err != nil {
		return nil, err
	}
	return med, nil
}

// List retrieves all medications ordered by reminder time, then name.
// Undecodable entries are returned as skipped keys.
func (r *MedicationRepo) List() ([]*model.Medication, []string, error) {
	res, err := GetAllByPrefix(r.db, model.PrefixMedication+":", func() *model.Medication {
		return &model.Medication{}
	})
	if err != nil {
		return nil, nil, err
	}
	SortMedications(res.Items)
	return res.Items, res.Skipped, nil
}

// ListMedications returns all readable medications.
func (r *MedicationRepo) ListMedications() ([]*model.Medication, error) {
	meds, _, err := r.List()
	return meds, err
}

// Update stores an existing medication.
func (r *MedicationRepo) Update(med *model.Medication) error {
	return r.db.Set(med)
}

// Delete removes a medication by key.
func (r *MedicationRepo) Delete(key string) error {
	return r.db.Delete(key)
}

// SortMedications orders medications with reminders first by time, then
// the rest by name.
func SortMedications(meds []*model.Medication) {
	sort.SliceStable(meds, func(i, j int) bool {
		a, b := meds[i], meds[j]
		if a.HasReminder() != b.HasReminder() {
			return a.HasReminder()
		}
		if a.ReminderTime != b.ReminderTime {
			return a.ReminderTime < b.ReminderTime
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
}

// FindByIDPrefix resolves a full or partial medication ID.
func FindByIDPrefix(meds []*model.Medication, prefix string) (*model.Medication, error) {
	prefix = strings.TrimPrefix(strings.TrimSpace(prefix), model.PrefixMedication+":")
	if prefix == "" {
		return nil, errors.ErrMedicationNotFound
	}

	var matches []*model.Medication
	for _, m := range meds {
		if m.ID() == prefix {
			return m, nil
		}
		if strings.HasPrefix(m.ID(), prefix) {
			matches = append(matches, m)
		}
	}

	switch len(matches) {
	case 0:
		return nil, errors.ErrMedicationNotFound
	case 1:
		return matches[0], nil
	default:
		return nil, errors.ErrAmbiguousID
	}
}
