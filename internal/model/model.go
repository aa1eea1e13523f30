// Package model defines the domain models for renalog.
package model

import "time"

// Model is the interface that all database models must implement.
type Model interface {
	// SetKey sets the database key for this model.
	SetKey(key string)
	// GetKey returns the database key for this model.
	GetKey() string
}

// KeyPrefix constants for database key generation.
const (
	PrefixRecord        = "record"
	PrefixMedication    = "medication"
	KeyProfile          = "profile"
	KeyNotifyPermission = "notify_permission"
)

// DateLayout is the calendar-day format used for every stored date.
const DateLayout = "2006-01-02"

// ClockLayout is the wall-clock minute format used for reminder times.
const ClockLayout = "15:04"

// Day formats t as a calendar day in t's location.
func Day(t time.Time) string {
	return t.Format(DateLayout)
}

// Minute formats t as an HH:MM wall-clock minute in t's location.
func Minute(t time.Time) string {
	return t.Format(ClockLayout)
}
