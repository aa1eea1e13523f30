package model

import (
	"time"
)

// NotificationType defines the type of notification.
type NotificationType string

// Notification types.
const (
	NotifyMedication NotificationType = "medication"
	NotifyTest       NotificationType = "test"
)

// Notification represents a notification to be sent.
type Notification struct {
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Dose      *Dose            `json:"dose,omitempty"` // set on medication reminders
	Timestamp time.Time        `json:"timestamp"`
	Color     int              `json:"color,omitempty"` // Hex color for embeds
}

// Dose is the medication a reminder asks the patient to take.
type Dose struct {
	Medication string `json:"medication"`
	Dosage     string `json:"dosage,omitempty"`
	Scheduled  string `json:"scheduled"` // HH:MM
}

// NewNotification creates a new notification.
func NewNotification(t NotificationType, title, message string) *Notification {
	return &Notification{
		Type:      t,
		Title:     title,
		Message:   message,
		Timestamp: time.Now(),
		Color:     DefaultColorForType(t),
	}
}

// WithTimestamp overrides the creation time.
func (n *Notification) WithTimestamp(t time.Time) *Notification {
	n.Timestamp = t
	return n
}

// Notification colors (Discord-compatible hex values).
const (
	ColorSuccess = 0x57F287 // Green
	ColorWarning = 0xFEE75C // Yellow
	ColorInfo    = 0x5865F2 // Blurple
	ColorError   = 0xED4245 // Red
	ColorPrimary = 0x3498DB // Blue
)

// DefaultColorForType returns the default color for a notification type.
func DefaultColorForType(t NotificationType) int {
	switch t {
	case NotifyMedication:
		return ColorWarning
	case NotifyTest:
		return ColorPrimary
	default:
		return ColorInfo
	}
}

// TypeLabel returns a human-readable label for the notification type.
func (n *Notification) TypeLabel() string {
	switch n.Type {
	case NotifyMedication:
		return "Medication Reminder"
	case NotifyTest:
		return "Test Notification"
	default:
		return "Notification"
	}
}

// MedicationReminder builds the reminder notification for m.
func MedicationReminder(m *Medication, at time.Time) *Notification {
	n := NewNotification(NotifyMedication,
		"Time to take "+m.Name,
		"Dosage: "+m.Dosage).WithTimestamp(at)
	n.Dose = &Dose{Medication: m.Name, Dosage: m.Dosage, Scheduled: m.ReminderTime}
	return n
}
