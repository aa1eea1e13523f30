package model

import "fmt"

// Medication is a drug the patient takes, with an optional daily reminder.
//
// TakenToday is only meaningful together with LastTakenDate: a true flag left
// over from a previous day does not mean the medication was taken today.
type Medication struct {
	Key           string `json:"key"`
	Name          string `json:"name"`
	Dosage        string `json:"dosage"`
	Frequency     string `json:"frequency"`
	ReminderTime  string `json:"reminder_time,omitempty"` // HH:MM, 24h
	TakenToday    bool   `json:"taken_today"`
	LastTakenDate string `json:"last_taken_date,omitempty"`
}

// FrequencyPresets are the labels offered when adding a medication.
// Any other label is stored as-is.
var FrequencyPresets = []string{
	"once daily",
	"twice daily",
	"three times daily",
	"every dialysis session",
	"as needed",
}

// SetKey sets the database key for this medication.
func (m *Medication) SetKey(key string) {
	m.Key = key
}

// GetKey returns the database key for this medication.
func (m *Medication) GetKey() string {
	return m.Key
}

// ID returns the medication identifier without the key prefix.
func (m *Medication) ID() string {
	return trimPrefix(m.Key, PrefixMedication)
}

// ShortID returns the first 6 characters of the identifier for display.
func (m *Medication) ShortID() string {
	return shortID(m.ID())
}

// HasReminder reports whether a reminder time is configured.
func (m *Medication) HasReminder() bool {
	return m.ReminderTime != ""
}

// IsTakenOn reports whether the medication has been marked taken on day.
func (m *Medication) IsTakenOn(day string) bool {
	return m.TakenToday && m.LastTakenDate == day
}

// ToggleTaken flips the taken state for day.
func (m *Medication) ToggleTaken(day string) {
	m.TakenToday = !m.IsTakenOn(day)
	m.LastTakenDate = day
}

// IsDueAt reports whether a reminder should fire at minute on day.
func (m *Medication) IsDueAt(minute, day string) bool {
	return m.HasReminder() && m.ReminderTime == minute && !m.IsTakenOn(day)
}

// IsPresetFrequency reports whether f is one of FrequencyPresets.
func IsPresetFrequency(f string) bool {
	for _, p := range FrequencyPresets {
		if p == f {
			return true
		}
	}
	return false
}

// GenerateMedicationKey generates a database key for a medication using UUID.
func GenerateMedicationKey(uuid string) string {
	return fmt.Sprintf("%s:%s", PrefixMedication, uuid)
}
