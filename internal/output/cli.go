package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/renalog/renalog/internal/app"
	"github.com/renalog/renalog/internal/clinical"
	"github.com/renalog/renalog/internal/model"
)

// Styles for CLI output.
var (
	// Colors
	colorPrimary = lipgloss.Color("#0EA5E9") // Sky
	colorMuted   = lipgloss.Color("#6B7280") // Gray
	colorWarning = lipgloss.Color("#F59E0B") // Yellow
	colorError   = lipgloss.Color("#EF4444") // Red
	colorSuccess = lipgloss.Color("#10B981") // Green

	// Styles
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorSuccess)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorWarning)

	styleError = lipgloss.NewStyle().
			Foreground(colorError)

	styleDanger = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorError)

	styleMuted = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleBold = lipgloss.NewStyle().
			Bold(true)

	styleName = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	styleNote = lipgloss.NewStyle().
			Italic(true).
			Foreground(colorMuted)
)

// CLIFormatter provides CLI-specific formatting.
type CLIFormatter struct {
	*Formatter
}

// NewCLIFormatter creates a new CLI formatter.
func NewCLIFormatter(f *Formatter) *CLIFormatter {
	return &CLIFormatter{Formatter: f}
}

func (c *CLIFormatter) render(style lipgloss.Style, text string) string {
	if c.IsColorEnabled() {
		return style.Render(text)
	}
	return text
}

// Title prints a title.
func (c *CLIFormatter) Title(text string) {
	c.Println(c.render(styleTitle, text))
}

// Success prints a success message.
func (c *CLIFormatter) Success(text string) {
	c.Println(c.render(styleSuccess, "✓ "+text))
}

// Warning prints a warning message.
func (c *CLIFormatter) Warning(text string) {
	c.Println(c.render(styleWarning, "⚠ "+text))
}

// Danger prints an urgent message.
func (c *CLIFormatter) Danger(text string) {
	c.Println(c.render(styleDanger, "‼ "+text))
}

// Error prints an error message.
func (c *CLIFormatter) Error(text string) {
	c.Println(c.render(styleError, "✗ "+text))
}

// Muted prints muted text.
func (c *CLIFormatter) Muted(text string) {
	c.Println(c.render(styleMuted, text))
}

// Name formats a patient or medication name.
func (c *CLIFormatter) Name(name string) string {
	return c.render(styleName, name)
}

// Note formats a note.
func (c *CLIFormatter) Note(text string) string {
	return c.render(styleNote, text)
}

// PrintRecordAdded prints a stored record followed by its assessment.
func (c *CLIFormatter) PrintRecordAdded(r *model.HealthRecord, a app.Assessment) {
	c.Success(fmt.Sprintf("Recorded session %s (%s)", r.Date, r.ShortID()))
	c.Printf("  Weight: %s (dry %s, %+.1f kg)\n", FormatKg(r.Weight), FormatKg(r.DryWeight), r.WeightGain())
	if r.HasFluidRemoval() {
		c.Printf("  Fluid removed: %s\n", FormatFluid(r.FluidRemoval))
	}
	if r.Systolic > 0 {
		c.Printf("  Blood pressure: %s mmHg\n", FormatPressure(r.Systolic, r.Diastolic))
	}
	if r.Notes != "" {
		c.Printf("  Notes: %s\n", c.Note(r.Notes))
	}
	c.PrintAssessment(a)
}

// PrintAssessment prints active clinical findings, if any.
func (c *CLIFormatter) PrintAssessment(a app.Assessment) {
	if a.Fluid.Warning {
		c.Warning(fmt.Sprintf("Fluid removal is %s of dry weight, above the %s limit.",
			FormatPercent(a.Fluid.Ratio), FormatPercent(clinical.FluidRemovalLimit)))
	}
	if a.Pressure != nil {
		if a.Pressure.IsDanger() {
			c.Danger(a.Pressure.Message)
			c.Danger(a.Pressure.Advice)
		} else {
			c.Warning(a.Pressure.Message)
		}
	}
	if a.AgeHint != "" {
		c.Muted(a.AgeHint)
	}
}

// PrintRecords prints records as a table, oldest first.
func (c *CLIFormatter) PrintRecords(records []*model.HealthRecord, assess func(*model.HealthRecord) app.Assessment) {
	if len(records) == 0 {
		c.Muted("No records yet.")
		c.Muted("Use 'renalog record add --weight 72.4 --dry-weight 70' to add one.")
		return
	}

	rows := make([]TableRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, TableRow{Columns: []string{
			r.ShortID(),
			r.Date,
			FormatKg(r.Weight),
			FormatKg(r.DryWeight),
			FormatFluid(r.FluidRemoval),
			FormatPressure(r.Systolic, r.Diastolic),
			Flags(assess(r)),
		}})
	}
	c.PrintTable([]string{"ID", "DATE", "WEIGHT", "DRY", "FLUID", "BP", "FLAGS"}, rows)
}

// Flags returns a compact label for an assessment's findings.
func Flags(a app.Assessment) string {
	var flags []string
	if a.Pressure.IsDanger() {
		flags = append(flags, "LOW BP")
	} else if a.Pressure != nil {
		flags = append(flags, "HIGH BP")
	}
	if a.Fluid.Warning {
		flags = append(flags, "FLUID "+FormatPercent(a.Fluid.Ratio))
	}
	return strings.Join(flags, ", ")
}

// PrintMedications prints medications with today's taken state.
func (c *CLIFormatter) PrintMedications(meds []*model.Medication, today string) {
	if len(meds) == 0 {
		c.Muted("No medications yet.")
		c.Muted("Use 'renalog med add NAME --dosage \"800 mg\"' to add one.")
		return
	}

	rows := make([]TableRow, 0, len(meds))
	for _, m := range meds {
		taken := ""
		if m.IsTakenOn(today) {
			taken = "✓"
		}
		reminder := m.ReminderTime
		if reminder == "" {
			reminder = "-"
		}
		rows = append(rows, TableRow{Columns: []string{
			m.ShortID(), m.Name, m.Dosage, m.Frequency, reminder, taken,
		}})
	}
	c.PrintTable([]string{"ID", "NAME", "DOSAGE", "FREQUENCY", "REMINDER", "TAKEN"}, rows)
}

// PrintMedication prints a single medication.
func (c *CLIFormatter) PrintMedication(m *model.Medication, today string) {
	c.Printf("%s %s\n", c.Name(m.Name), c.render(styleMuted, "("+m.ShortID()+")"))
	c.Printf("  Dosage: %s\n", m.Dosage)
	if m.Frequency != "" {
		c.Printf("  Frequency: %s\n", m.Frequency)
	}
	if m.HasReminder() {
		c.Printf("  Reminder: %s\n", m.ReminderTime)
	}
	if m.IsTakenOn(today) {
		c.Printf("  Taken today: yes\n")
	} else {
		c.Printf("  Taken today: no\n")
	}
}

// PrintProfile prints the patient profile with the resolved time on dialysis.
func (c *CLIFormatter) PrintProfile(p *model.PatientProfile, months int, ok bool, err error) {
	if p.IsEmpty() {
		c.Muted("No profile yet.")
		c.Muted("Use 'renalog profile set --name NAME --age 60' to create one.")
		return
	}

	name := p.Name
	if name == "" {
		name = "(unnamed)"
	}
	c.Title(name)
	if p.HasAge() {
		c.Printf("  Age: %d\n", p.Age)
	} else {
		c.Printf("  Age: unknown\n")
	}

	switch {
	case err != nil:
		c.Printf("  On dialysis: %s\n", c.render(styleError, "invalid start date ("+err.Error()+")"))
	case ok:
		c.Printf("  On dialysis: %s\n", clinical.FormatMonths(months))
	default:
		c.Printf("  On dialysis: not set\n")
	}
	if p.Treatment.Kind == model.TreatmentStartDate {
		c.Printf("  Started: %s\n", p.Treatment.StartDate)
	}

	sys, dia := clinical.Limits(p.Age)
	c.Printf("  Blood-pressure limit: %d/%d\n", sys, dia)
}

// PrintPermission prints the notification permission state.
func (c *CLIFormatter) PrintPermission(p model.Permission) {
	switch p {
	case model.PermissionGranted:
		c.Success("Reminder notifications are allowed.")
	case model.PermissionDenied:
		c.Warning("Reminder notifications are blocked.")
	default:
		c.Muted("Reminder notifications have not been set up.")
		c.Muted("Use 'renalog notify permission grant' to allow them.")
	}
}

// Table helpers for CLI output.
type TableRow struct {
	Columns []string
}

// PrintTable prints a simple table.
func (c *CLIFormatter) PrintTable(headers []string, rows []TableRow) {
	if len(rows) == 0 {
		return
	}

	// Calculate column widths
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, col := range row.Columns {
			if i < len(widths) && lipgloss.Width(col) > widths[i] {
				widths[i] = lipgloss.Width(col)
			}
		}
	}

	// Print headers
	var headerLine strings.Builder
	for i, h := range headers {
		headerLine.WriteString(pad(h, widths[i]))
	}
	c.Println(strings.TrimRight(c.render(styleBold, headerLine.String()), " "))

	// Print separator
	var sep strings.Builder
	for _, w := range widths {
		sep.WriteString(strings.Repeat("─", w) + "  ")
	}
	c.Println(strings.TrimRight(sep.String(), " "))

	// Print rows
	for _, row := range rows {
		var rowLine strings.Builder
		for i, col := range row.Columns {
			if i < len(widths) {
				rowLine.WriteString(pad(col, widths[i]))
			}
		}
		c.Println(strings.TrimRight(rowLine.String(), " "))
	}
}

func pad(s string, width int) string {
	return s + strings.Repeat(" ", width-lipgloss.Width(s)+2)
}
