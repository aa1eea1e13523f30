package storage

import (
	"encoding/json"
	"io"
	"time"

	"github.com/renalog/renalog/internal/model"
)

// Export is a JSON dump of everything readable in the database.
type Export struct {
	ExportedAt  time.Time             `json:"exported_at"`
	Profile     *model.PatientProfile `json:"profile,omitempty"`
	Permission  model.Permission      `json:"notify_permission"`
	Records     []*model.HealthRecord `json:"records"`
	Medications []*model.Medication   `json:"medications"`
	Skipped     []string              `json:"skipped,omitempty"`
}

// ExportAll collects every readable entry. Unreadable entries are listed by
// key in Skipped.
func ExportAll(db *DB) (*Export, error) {
	out := &Export{ExportedAt: time.Now()}

	records, skipped, err := NewRecordRepo(db).List()
	if err != nil {
		return nil, err
	}
	out.Records = records
	out.Skipped = append(out.Skipped, skipped...)

	meds, skipped, err := NewMedicationRepo(db).List()
	if err != nil {
		return nil, err
	}
	out.Medications = meds
	out.Skipped = append(out.Skipped, skipped...)

	profile, corrupt, err := NewProfileRepo(db).Get()
	if err != nil {
		return nil, err
	}
	if corrupt {
		out.Skipped = append(out.Skipped, model.KeyProfile)
	}
	if !profile.IsEmpty() {
		out.Profile = profile
	}

	out.Permission, err = NewPermissionRepo(db).Permission()
	if err != nil {
		return nil, err
	}
	return out, nil
}

// WriteJSON writes the export as indented JSON.
func (e *Export) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}
