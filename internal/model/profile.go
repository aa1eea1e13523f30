package model

import (
	"time"

	"github.com/renalog/renalog/internal/clinical"
)

// TreatmentKind selects how time on dialysis is recorded.
type TreatmentKind string

const (
	// TreatmentStartDate derives months on treatment from a start date.
	TreatmentStartDate TreatmentKind = "start_date"
	// TreatmentMonths stores months on treatment directly.
	TreatmentMonths TreatmentKind = "months"
)

// Treatment is a tagged variant: exactly one of StartDate or Months is
// meaningful, chosen by Kind.
type Treatment struct {
	Kind      TreatmentKind `json:"kind,omitempty"`
	StartDate string        `json:"start_date,omitempty"`
	Months    int           `json:"months,omitempty"`
}

// IsSet reports whether any treatment duration was entered.
func (t Treatment) IsSet() bool {
	return t.Kind != ""
}

// Start parses StartDate in loc.
func (t Treatment) Start(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, t.StartDate, loc)
}

// StartedOn returns a start-date treatment variant.
func StartedOn(day string) Treatment {
	return Treatment{Kind: TreatmentStartDate, StartDate: day}
}

// TreatedFor returns a direct month-count treatment variant.
func TreatedFor(months int) Treatment {
	return Treatment{Kind: TreatmentMonths, Months: months}
}

// PatientProfile is the single patient profile of this installation.
type PatientProfile struct {
	Name      string    `json:"name"`
	Age       int       `json:"age,omitempty"` // 0 means unknown
	Treatment Treatment `json:"treatment"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SetKey is a no-op; the profile always lives at KeyProfile.
func (p *PatientProfile) SetKey(string) {}

// GetKey returns the database key for the profile.
func (p *PatientProfile) GetKey() string {
	return KeyProfile
}

// HasAge reports whether the patient's age is known.
func (p *PatientProfile) HasAge() bool {
	return p.Age > 0
}

// IsEmpty reports whether the profile has never been filled in.
func (p *PatientProfile) IsEmpty() bool {
	return p.Name == "" && p.Age == 0 && !p.Treatment.IsSet()
}

// MonthsOnTreatment resolves the treatment variant to a month count as of now.
// ok is false when no treatment duration was entered.
func (p *PatientProfile) MonthsOnTreatment(now time.Time) (months int, ok bool, err error) {
	switch p.Treatment.Kind {
	case TreatmentStartDate:
		start, err := p.Treatment.Start(now.Location())
		if err != nil {
			return 0, false, err
		}
		months, err := clinical.MonthsOnTreatment(start, now)
		if err != nil {
			return 0, false, err
		}
		return months, true, nil
	case TreatmentMonths:
		return p.Treatment.Months, true, nil
	default:
		return 0, false, nil
	}
}
