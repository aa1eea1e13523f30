package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/template"
	"time"

	"github.com/renalog/renalog/internal/model"
)

// GenericFormatter posts a flat JSON document, or the output of a
// user-supplied text/template when Template is set.
type GenericFormatter struct {
	Template string
}

// NewGenericFormatter creates a generic formatter with an optional template.
func NewGenericFormatter(template string) *GenericFormatter {
	return &GenericFormatter{Template: template}
}

type genericDose struct {
	Medication string `json:"medication"`
	Dosage     string `json:"dosage,omitempty"`
	Scheduled  string `json:"scheduled,omitempty"`
}

// genericPayload is the default document. Receivers switch on Type and
// read Dose for medication reminders.
type genericPayload struct {
	Source  string       `json:"source"`
	Type    string       `json:"type"`
	Title   string       `json:"title"`
	Message string       `json:"message"`
	Dose    *genericDose `json:"dose,omitempty"`
	SentAt  string       `json:"sent_at"`
	Color   string       `json:"color"`
}

// templateData is what a custom template sees. Dose fields are flattened
// so templates need no nil checks.
type templateData struct {
	Type       string
	Kind       string
	Title      string
	Message    string
	Medication string
	Dosage     string
	Scheduled  string
	Timestamp  time.Time
	Color      string
}

// Format converts a notification to the generic webhook body.
func (f *GenericFormatter) Format(n *model.Notification) ([]byte, error) {
	if f.Template != "" {
		return f.render(n)
	}

	payload := genericPayload{
		Source:  brand,
		Type:    string(n.Type),
		Title:   n.Title,
		Message: n.Message,
		SentAt:  n.Timestamp.UTC().Format(time.RFC3339),
		Color:   fmt.Sprintf("#%06X", colorOf(n)),
	}
	if d := n.Dose; d != nil {
		payload.Dose = &genericDose{Medication: d.Medication, Dosage: d.Dosage, Scheduled: d.Scheduled}
	}
	return json.Marshal(payload)
}

func (f *GenericFormatter) render(n *model.Notification) ([]byte, error) {
	tmpl, err := template.New("webhook").Option("missingkey=error").Parse(f.Template)
	if err != nil {
		return nil, fmt.Errorf("parse webhook template: %w", err)
	}

	data := templateData{
		Type:      string(n.Type),
		Kind:      n.TypeLabel(),
		Title:     n.Title,
		Message:   n.Message,
		Timestamp: n.Timestamp,
		Color:     fmt.Sprintf("#%06X", colorOf(n)),
	}
	if d := n.Dose; d != nil {
		data.Medication, data.Dosage, data.Scheduled = d.Medication, d.Dosage, d.Scheduled
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render webhook template: %w", err)
	}
	return buf.Bytes(), nil
}

// ContentType returns the content type for generic webhooks.
func (f *GenericFormatter) ContentType() string {
	return "application/json"
}
