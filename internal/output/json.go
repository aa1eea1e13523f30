package output

import (
	"time"

	"github.com/renalog/renalog/internal/app"
	"github.com/renalog/renalog/internal/model"
)

// JSONFormatter provides JSON-specific formatting.
type JSONFormatter struct {
	*Formatter
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(f *Formatter) *JSONFormatter {
	return &JSONFormatter{Formatter: f}
}

// RecordOutput represents a record in JSON output.
type RecordOutput struct {
	ID           string            `json:"id"`
	Date         string            `json:"date"`
	Weight       float64           `json:"weight"`
	DryWeight    float64           `json:"dry_weight"`
	FluidRemoval *float64          `json:"fluid_removal,omitempty"`
	Systolic     int               `json:"systolic,omitempty"`
	Diastolic    int               `json:"diastolic,omitempty"`
	Notes        string            `json:"notes,omitempty"`
	CreatedAt    string            `json:"created_at"`
	Assessment   *AssessmentOutput `json:"assessment"`
}

// AssessmentOutput represents clinical findings in JSON output.
type AssessmentOutput struct {
	FluidRatio    *float64        `json:"fluid_ratio,omitempty"`
	FluidWarning  bool            `json:"fluid_warning"`
	BloodPressure *BPStatusOutput `json:"blood_pressure,omitempty"`
	AgeHint       string          `json:"age_hint,omitempty"`
}

// BPStatusOutput represents a blood-pressure finding.
type BPStatusOutput struct {
	Kind           string `json:"kind"`
	Message        string `json:"message"`
	Advice         string `json:"advice,omitempty"`
	SystolicLimit  int    `json:"systolic_limit,omitempty"`
	DiastolicLimit int    `json:"diastolic_limit,omitempty"`
}

// NewAssessmentOutput creates an AssessmentOutput from an Assessment.
func NewAssessmentOutput(a app.Assessment) *AssessmentOutput {
	out := &AssessmentOutput{
		FluidWarning: a.Fluid.Warning,
		AgeHint:      a.AgeHint,
	}
	if a.Fluid.Evaluated {
		ratio := a.Fluid.Ratio
		out.FluidRatio = &ratio
	}
	if a.Pressure != nil {
		out.BloodPressure = &BPStatusOutput{
			Kind:           string(a.Pressure.Kind),
			Message:        a.Pressure.Message,
			Advice:         a.Pressure.Advice,
			SystolicLimit:  a.Pressure.SystolicLimit,
			DiastolicLimit: a.Pressure.DiastolicLimit,
		}
	}
	return out
}

// NewRecordOutput creates a RecordOutput from a record and its assessment.
func NewRecordOutput(r *model.HealthRecord, a app.Assessment) *RecordOutput {
	return &RecordOutput{
		ID:           r.ID(),
		Date:         r.Date,
		Weight:       r.Weight,
		DryWeight:    r.DryWeight,
		FluidRemoval: r.FluidRemoval,
		Systolic:     r.Systolic,
		Diastolic:    r.Diastolic,
		Notes:        r.Notes,
		CreatedAt:    r.CreatedAt.Format(time.RFC3339),
		Assessment:   NewAssessmentOutput(a),
	}
}

// RecordsResponse represents the record list output in JSON.
type RecordsResponse struct {
	Records    []*RecordOutput `json:"records"`
	TotalCount int             `json:"total_count"`
	Skipped    []string        `json:"skipped,omitempty"`
}

// MedicationOutput represents a medication in JSON output.
type MedicationOutput struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency,omitempty"`
	ReminderTime string `json:"reminder_time,omitempty"`
	TakenToday   bool   `json:"taken_today"`
}

// NewMedicationOutput creates a MedicationOutput. TakenToday is evaluated
// against today, so a stale flag from an earlier day reads as false.
func NewMedicationOutput(m *model.Medication, today string) *MedicationOutput {
	return &MedicationOutput{
		ID:           m.ID(),
		Name:         m.Name,
		Dosage:       m.Dosage,
		Frequency:    m.Frequency,
		ReminderTime: m.ReminderTime,
		TakenToday:   m.IsTakenOn(today),
	}
}

// MedicationsResponse represents the medication list output in JSON.
type MedicationsResponse struct {
	Date        string              `json:"date"`
	Medications []*MedicationOutput `json:"medications"`
}

// ProfileOutput represents the patient profile in JSON output.
type ProfileOutput struct {
	Name              string `json:"name,omitempty"`
	Age               int    `json:"age,omitempty"`
	TreatmentKind     string `json:"treatment_kind,omitempty"`
	StartDate         string `json:"start_date,omitempty"`
	MonthsOnTreatment *int   `json:"months_on_treatment,omitempty"`
	TreatmentError    string `json:"treatment_error,omitempty"`
}

// NewProfileOutput creates a ProfileOutput with the resolved duration.
func NewProfileOutput(p *model.PatientProfile, months int, ok bool, err error) *ProfileOutput {
	out := &ProfileOutput{
		Name:          p.Name,
		Age:           p.Age,
		TreatmentKind: string(p.Treatment.Kind),
		StartDate:     p.Treatment.StartDate,
	}
	switch {
	case err != nil:
		out.TreatmentError = err.Error()
	case ok:
		out.MonthsOnTreatment = &months
	}
	return out
}

// TextResponse carries a single piece of generated text.
type TextResponse struct {
	Status string `json:"status"`
	Text   string `json:"text"`
}

// PermissionResponse represents the notification permission.
type PermissionResponse struct {
	Permission string `json:"permission"`
}

// ErrorResponse represents an error in JSON.
type ErrorResponse struct {
	Status  string `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// PrintRecordAdded outputs a new record in JSON format.
func (j *JSONFormatter) PrintRecordAdded(r *model.HealthRecord, a app.Assessment) error {
	return j.JSON(NewRecordOutput(r, a))
}

// PrintRecords outputs records in JSON format.
func (j *JSONFormatter) PrintRecords(records []*model.HealthRecord, skipped []string, assess func(*model.HealthRecord) app.Assessment) error {
	outputs := make([]*RecordOutput, len(records))
	for i, r := range records {
		outputs[i] = NewRecordOutput(r, assess(r))
	}
	return j.JSON(&RecordsResponse{Records: outputs, TotalCount: len(records), Skipped: skipped})
}

// PrintMedications outputs medications in JSON format.
func (j *JSONFormatter) PrintMedications(meds []*model.Medication, today string) error {
	outputs := make([]*MedicationOutput, len(meds))
	for i, m := range meds {
		outputs[i] = NewMedicationOutput(m, today)
	}
	return j.JSON(&MedicationsResponse{Date: today, Medications: outputs})
}

// PrintMedication outputs a single medication in JSON format.
func (j *JSONFormatter) PrintMedication(m *model.Medication, today string) error {
	return j.JSON(NewMedicationOutput(m, today))
}

// PrintProfile outputs the profile in JSON format.
func (j *JSONFormatter) PrintProfile(p *model.PatientProfile, months int, ok bool, err error) error {
	return j.JSON(NewProfileOutput(p, months, ok, err))
}

// PrintText outputs generated text in JSON format.
func (j *JSONFormatter) PrintText(text string) error {
	status := "ok"
	if text == "" {
		status = "empty"
	}
	return j.JSON(TextResponse{Status: status, Text: text})
}

// PrintPermission outputs the permission in JSON format.
func (j *JSONFormatter) PrintPermission(p model.Permission) error {
	return j.JSON(PermissionResponse{Permission: string(p)})
}

// PrintError outputs an error in JSON format.
func (j *JSONFormatter) PrintError(status, errMsg, message string) error {
	resp := ErrorResponse{
		Status:  status,
		Error:   errMsg,
		Message: message,
	}
	return j.JSON(resp)
}
