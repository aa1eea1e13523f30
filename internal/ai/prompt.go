package ai

import (
	"fmt"
	"strings"
	"time"

	"github.com/renalog/renalog/internal/clinical"
	"github.com/renalog/renalog/internal/model"
)

// MaxPromptRecords bounds how many of the most recent records are sent.
const MaxPromptRecords = 30

const summaryInstructions = `You are assisting a patient on hemodialysis who keeps a personal log.
Write a short, plain-language summary (at most 150 words) of the readings below.
Describe trends in weight gain between sessions, blood pressure, and fluid removal.
Point out readings that were flagged. Do not diagnose and do not change treatment;
suggest discussing concerns with the dialysis care team.`

const transcribeInstructions = `Transcribe this voice note verbatim. Return only the transcript text.`

// BuildSummaryPrompt renders records and profile into the summary prompt.
// Records must already be in chronological order.
func BuildSummaryPrompt(records []*model.HealthRecord, profile *model.PatientProfile, now time.Time) string {
	var sb strings.Builder
	sb.WriteString(summaryInstructions)
	sb.WriteString("\n\nPatient:\n")

	age := 0
	if profile != nil {
		age = profile.Age
		if profile.HasAge() {
			fmt.Fprintf(&sb, "- Age: %d\n", profile.Age)
		} else {
			sb.WriteString("- Age: unknown\n")
		}
		if months, ok, err := profile.MonthsOnTreatment(now); err == nil && ok {
			fmt.Fprintf(&sb, "- Time on dialysis: %s\n", clinical.FormatMonths(months))
		}
	}

	sysLimit, diaLimit := clinical.Limits(age)
	fmt.Fprintf(&sb, "- Blood pressure limit: %d/%d mmHg\n", sysLimit, diaLimit)

	if len(records) > MaxPromptRecords {
		records = records[len(records)-MaxPromptRecords:]
	}

	sb.WriteString("\nReadings (oldest first):\n")
	for _, r := range records {
		fmt.Fprintf(&sb, "- %s: weight %.1f kg, dry weight %.1f kg", r.Date, r.Weight, r.DryWeight)
		if r.FluidRemoval != nil {
			fmt.Fprintf(&sb, ", fluid removed %.1f", *r.FluidRemoval)
		}
		if r.Systolic > 0 && r.Diastolic > 0 {
			fmt.Fprintf(&sb, ", BP %d/%d", r.Systolic, r.Diastolic)
		}

		var flags []string
		if a := clinical.CheckFluidRemoval(r.DryWeight, r.FluidRemoval); a.Warning {
			flags = append(flags, fmt.Sprintf("fluid removal %.1f%% of dry weight", a.Percent()))
		}
		sys, dia := r.Pressure()
		if st := clinical.EvaluateBloodPressure(sys, dia, age); st != nil {
			flags = append(flags, string(st.Kind)+" blood pressure")
		}
		if len(flags) > 0 {
			fmt.Fprintf(&sb, " [flagged: %s]", strings.Join(flags, "; "))
		}
		if r.Notes != "" {
			fmt.Fprintf(&sb, " (note: %s)", r.Notes)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
