package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/renalog/renalog/internal/app"
	"github.com/renalog/renalog/internal/clinical"
	"github.com/renalog/renalog/internal/model"
	"github.com/renalog/renalog/internal/output"
)

// StyleMuted is used for muted text (alias for convenience).
var StyleMuted = StyleSubtitle

func boxWidth(width int) int {
	if width < 24 {
		return 20
	}
	return width - 4
}

// ProfileComponent displays the patient profile and time on dialysis.
type ProfileComponent struct {
	Profile model.PatientProfile
	Months  int
	HasTime bool
	Err     error
	Width   int
}

// View renders the profile component.
func (pc *ProfileComponent) View() string {
	var content strings.Builder

	content.WriteString(StyleTitle.Render("Patient"))
	content.WriteString("\n")

	if pc.Profile.IsEmpty() {
		content.WriteString(StyleMuted.Render("No profile yet"))
		content.WriteString("\n")
		content.WriteString(StyleMuted.Render("Use 'renalog profile set' to add one"))
		return StyleBox.Width(boxWidth(pc.Width)).Render(content.String())
	}

	name := pc.Profile.Name
	if name == "" {
		name = "(unnamed)"
	}
	content.WriteString(StyleName.Render(name))
	if pc.Profile.HasAge() {
		content.WriteString(StyleSubtitle.Render(fmt.Sprintf("  age %d", pc.Profile.Age)))
	}
	content.WriteString("\n")

	switch {
	case pc.Err != nil:
		content.WriteString(StyleError.Render("On dialysis: invalid start date"))
	case pc.HasTime:
		content.WriteString("On dialysis: ")
		content.WriteString(StyleValue.Render(clinical.FormatMonths(pc.Months)))
	default:
		content.WriteString(StyleMuted.Render("On dialysis: not set"))
	}

	return StyleBox.Width(boxWidth(pc.Width)).Render(content.String())
}

// RecordComponent displays the latest record and its risk flags.
type RecordComponent struct {
	Record     *model.HealthRecord
	Assessment app.Assessment
	Width      int
}

// View renders the record component.
func (rc *RecordComponent) View() string {
	var content strings.Builder

	content.WriteString(StyleTitle.Render("Latest session"))
	content.WriteString("\n")

	if rc.Record == nil {
		content.WriteString(StyleMuted.Render("No records yet"))
		return StyleBox.Width(boxWidth(rc.Width)).Render(content.String())
	}

	r := rc.Record
	content.WriteString(StyleSubtitle.Render(r.Date))
	content.WriteString("\n")
	content.WriteString(fmt.Sprintf("Weight %s  dry %s  (%+.1f kg)\n",
		StyleValue.Render(output.FormatKg(r.Weight)), output.FormatKg(r.DryWeight), r.WeightGain()))
	content.WriteString(fmt.Sprintf("Fluid  %s", StyleValue.Render(output.FormatFluid(r.FluidRemoval))))
	if rc.Assessment.Fluid.Evaluated {
		content.WriteString(StyleSubtitle.Render(" (" + output.FormatPercent(rc.Assessment.Fluid.Ratio) + " of dry weight)"))
	}
	content.WriteString("\n")
	content.WriteString(fmt.Sprintf("BP     %s", StyleValue.Render(output.FormatPressure(r.Systolic, r.Diastolic))))

	a := rc.Assessment
	if a.Fluid.Warning {
		content.WriteString("\n\n")
		content.WriteString(StyleWarning.Render(fmt.Sprintf("⚠ Fluid removal %s of dry weight", output.FormatPercent(a.Fluid.Ratio))))
	}
	if a.Pressure != nil {
		content.WriteString("\n\n")
		if a.Pressure.IsDanger() {
			content.WriteString(StyleDanger.Render("‼ " + a.Pressure.Message))
			content.WriteString("\n")
			content.WriteString(StyleDanger.Render(a.Pressure.Advice))
		} else {
			content.WriteString(StyleWarning.Render("⚠ " + a.Pressure.Message))
		}
	}
	if a.AgeHint != "" {
		content.WriteString("\n")
		content.WriteString(StyleNote.Render(a.AgeHint))
	}

	var box lipgloss.Style
	switch {
	case a.Pressure.IsDanger():
		box = StyleDangerBox
	case a.HasFindings():
		box = StyleWarningBox
	default:
		box = StyleBox
	}
	return box.Width(boxWidth(rc.Width)).Render(content.String())
}

// MedicationsComponent displays today's medications with a selection cursor.
type MedicationsComponent struct {
	Medications []*model.Medication
	Today       string
	Cursor      int
	Width       int
}

// Taken returns how many medications are taken today.
func (mc *MedicationsComponent) Taken() int {
	n := 0
	for _, m := range mc.Medications {
		if m.IsTakenOn(mc.Today) {
			n++
		}
	}
	return n
}

// View renders the medications component.
func (mc *MedicationsComponent) View() string {
	var content strings.Builder

	content.WriteString(StyleTitle.Render("Today's medications"))
	content.WriteString("\n")

	if len(mc.Medications) == 0 {
		content.WriteString(StyleMuted.Render("No medications yet"))
		return StyleBox.Width(boxWidth(mc.Width)).Render(content.String())
	}

	for i, m := range mc.Medications {
		if i > 0 {
			content.WriteString("\n")
		}
		content.WriteString(mc.renderMedication(i, m))
	}

	taken := mc.Taken()
	total := len(mc.Medications)
	barWidth := boxWidth(mc.Width) - 20
	if barWidth < 10 {
		barWidth = 10
	}
	content.WriteString("\n\n")
	content.WriteString(ProgressBar(float64(taken)*100/float64(total), barWidth))
	content.WriteString(StyleSubtitle.Render(fmt.Sprintf("  %d/%d taken", taken, total)))

	box := StyleBox
	if taken == total {
		box = StyleDoneBox
	}
	return box.Width(boxWidth(mc.Width)).Render(content.String())
}

func (mc *MedicationsComponent) renderMedication(i int, m *model.Medication) string {
	var sb strings.Builder

	if i == mc.Cursor {
		sb.WriteString(StyleCursor.Render("> "))
	} else {
		sb.WriteString("  ")
	}

	if m.IsTakenOn(mc.Today) {
		sb.WriteString(StyleTaken.Render("[x] "))
	} else {
		sb.WriteString(StylePending.Render("[ ] "))
	}
	sb.WriteString(StyleName.Render(m.Name))
	if m.Dosage != "" {
		sb.WriteString(" " + m.Dosage)
	}
	if m.HasReminder() {
		sb.WriteString(StyleSubtitle.Render("  at " + m.ReminderTime))
	}
	return sb.String()
}

// SummaryComponent displays the latest AI summary.
type SummaryComponent struct {
	Text    string
	Loading bool
	Width   int
}

// View renders the summary component. It is empty until a summary has been
// requested.
func (sc *SummaryComponent) View() string {
	if sc.Text == "" && !sc.Loading {
		return ""
	}

	var content strings.Builder
	content.WriteString(StyleTitle.Render("Summary"))
	content.WriteString("\n")
	if sc.Loading {
		content.WriteString(StyleMuted.Render("Generating summary..."))
	} else {
		content.WriteString(lipgloss.NewStyle().Width(boxWidth(sc.Width) - 6).Render(sc.Text))
	}
	return StyleBox.Width(boxWidth(sc.Width)).Render(content.String())
}

// HelpBar renders the help bar at the bottom.
func HelpBar() string {
	keys := []struct {
		key  string
		desc string
	}{
		{"↑/↓", "select"},
		{"space", "toggle taken"},
		{"s", "summary"},
		{"r", "refresh"},
		{"q", "quit"},
	}

	var parts []string
	for _, k := range keys {
		part := StyleHelpKey.Render(k.key) + " " + StyleHelpDesc.Render(k.desc)
		parts = append(parts, part)
	}

	return StyleHelp.Render(strings.Join(parts, "  •  "))
}
