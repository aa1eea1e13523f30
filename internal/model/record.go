package model

import (
	"fmt"
	"sort"
	"time"
)

// HealthRecord is a single dialysis-session measurement entry.
// Records are immutable once stored.
type HealthRecord struct {
	Key          string    `json:"key"`
	Date         string    `json:"date"`
	Weight       float64   `json:"weight"`
	DryWeight    float64   `json:"dry_weight"`
	FluidRemoval *float64  `json:"fluid_removal,omitempty"`
	Systolic     int       `json:"systolic"`
	Diastolic    int       `json:"diastolic"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// SetKey sets the database key for this record.
func (r *HealthRecord) SetKey(key string) {
	r.Key = key
}

// GetKey returns the database key for this record.
func (r *HealthRecord) GetKey() string {
	return r.Key
}

// ID returns the record identifier without the key prefix.
func (r *HealthRecord) ID() string {
	return trimPrefix(r.Key, PrefixRecord)
}

// ShortID returns the first 6 characters of the identifier for display.
func (r *HealthRecord) ShortID() string {
	return shortID(r.ID())
}

// HasFluidRemoval reports whether a fluid removal amount was entered.
func (r *HealthRecord) HasFluidRemoval() bool {
	return r.FluidRemoval != nil
}

// WeightGain returns weight above dry weight in kg.
func (r *HealthRecord) WeightGain() float64 {
	return r.Weight - r.DryWeight
}

// GenerateRecordKey generates a database key for a record using UUID.
func GenerateRecordKey(uuid string) string {
	return fmt.Sprintf("%s:%s", PrefixRecord, uuid)
}

func trimPrefix(key, prefix string) string {
	if len(key) > len(prefix)+1 && key[:len(prefix)+1] == prefix+":" {
		return key[len(prefix)+1:]
	}
	return key
}

func shortID(id string) string {
	if len(id) > 6 {
		return id[:6]
	}
	return id
}

// Pressure returns the blood-pressure reading, or nils when it was not
// entered.
func (r *HealthRecord) Pressure() (systolic, diastolic *int) {
	if r.Systolic <= 0 || r.Diastolic <= 0 {
		return nil, nil
	}
	sys, dia := r.Systolic, r.Diastolic
	return &sys, &dia
}

// SortRecords orders records by date, then by creation time.
func SortRecords(records []*HealthRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Date != records[j].Date {
			return records[i].Date < records[j].Date
		}
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
}
