package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renalog/renalog/internal/app"
	"github.com/renalog/renalog/internal/clinical"
	"github.com/renalog/renalog/internal/model"
)

// =============================================================================
// Formatter Tests
// =============================================================================

func TestNewFormatter(t *testing.T) {
	f := NewFormatter()
	assert.NotNil(t, f)
	assert.Equal(t, FormatCLI, f.Format)
	assert.Equal(t, ColorAuto, f.ColorMode)
	assert.False(t, f.NoNewline)
}

func TestFormatterIsColorEnabled(t *testing.T) {
	t.Run("color_always", func(t *testing.T) {
		f := &Formatter{ColorMode: ColorAlways}
		assert.True(t, f.IsColorEnabled())
	})

	t.Run("color_never", func(t *testing.T) {
		f := &Formatter{ColorMode: ColorNever}
		assert.False(t, f.IsColorEnabled())
	})

	t.Run("color_auto_non_terminal", func(t *testing.T) {
		var buf bytes.Buffer
		f := &Formatter{
			Writer:    &buf,
			ColorMode: ColorAuto,
		}
		// Buffer is not a terminal
		assert.False(t, f.IsColorEnabled())
	})
}

func TestFormatterPrint(t *testing.T) {
	var buf bytes.Buffer
	f := &Formatter{Writer: &buf}

	f.Print("hello")
	assert.Equal(t, "hello", buf.String())
}

func TestFormatterPrintln(t *testing.T) {
	var buf bytes.Buffer
	f := &Formatter{Writer: &buf}

	f.Println("hello")
	assert.Equal(t, "hello\n", buf.String())
}

func TestFormatterPrintf(t *testing.T) {
	var buf bytes.Buffer
	f := &Formatter{Writer: &buf}

	f.Printf("hello %s", "world")
	assert.Equal(t, "hello world", buf.String())
}

func TestFormatterJSON(t *testing.T) {
	var buf bytes.Buffer
	f := &Formatter{Writer: &buf}

	data := map[string]string{"key": "value"}
	err := f.JSON(data)
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), `"key": "value"`)
}

func TestFormatterPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	f := &Formatter{Writer: &buf}

	data := map[string]int{"count": 42}
	err := f.PrintJSON(data)
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), `"count": 42`)
}

// =============================================================================
// Format and ColorMode Constants Tests
// =============================================================================

func TestFormatConstants(t *testing.T) {
	assert.Equal(t, Format("cli"), FormatCLI)
	assert.Equal(t, Format("json"), FormatJSON)
	assert.Equal(t, Format("plain"), FormatPlain)
}

func TestColorModeConstants(t *testing.T) {
	assert.Equal(t, ColorMode("auto"), ColorAuto)
	assert.Equal(t, ColorMode("always"), ColorAlways)
	assert.Equal(t, ColorMode("never"), ColorNever)
}

// =============================================================================
// Value Formatting Tests
// =============================================================================

func TestFormatKg(t *testing.T) {
	assert.Equal(t, "72.4 kg", FormatKg(72.4))
	assert.Equal(t, "70 kg", FormatKg(70))
}

func TestFormatFluid(t *testing.T) {
	v := 3.5
	assert.Equal(t, "3.5 L", FormatFluid(&v))
	assert.Equal(t, "-", FormatFluid(nil))
}

func TestFormatPressure(t *testing.T) {
	assert.Equal(t, "128/82", FormatPressure(128, 82))
	assert.Equal(t, "-", FormatPressure(0, 0))
	assert.Equal(t, "-", FormatPressure(120, 0))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "5.0%", FormatPercent(0.05))
	assert.Equal(t, "5.1%", FormatPercent(0.0514))
}

func TestFormatTime(t *testing.T) {
	ts := time.Date(2024, 3, 1, 14, 30, 45, 0, time.Local)
	assert.Equal(t, "2024-03-01 14:30:45", FormatTime(ts))
	assert.Equal(t, "2024-03-01 14:30", FormatTimeShort(ts))
}

// =============================================================================
// CLI Formatter Tests
// =============================================================================

func newTestCLI() (*CLIFormatter, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewCLIFormatter(&Formatter{Writer: &buf, ColorMode: ColorNever}), &buf
}

func ptrF(v float64) *float64 { return &v }

func TestNewCLIFormatter(t *testing.T) {
	f := NewFormatter()
	cli := NewCLIFormatter(f)
	assert.NotNil(t, cli)
	assert.Equal(t, f, cli.Formatter)
}

func TestCLIFormatterMessages(t *testing.T) {
	cli, buf := newTestCLI()

	cli.Title("My Title")
	cli.Success("Saved")
	cli.Warning("Careful")
	cli.Danger("Stop")
	cli.Error("Failed")
	cli.Muted("quiet")

	out := buf.String()
	assert.Contains(t, out, "My Title\n")
	assert.Contains(t, out, "✓ Saved")
	assert.Contains(t, out, "⚠ Careful")
	assert.Contains(t, out, "‼ Stop")
	assert.Contains(t, out, "✗ Failed")
	assert.Contains(t, out, "quiet")
}

func TestCLIFormatterNoColorIsPlain(t *testing.T) {
	cli, _ := newTestCLI()
	assert.Equal(t, "Iron", cli.Name("Iron"))
	assert.Equal(t, "a note", cli.Note("a note"))
}

func TestCLIFormatterPrintRecordAdded(t *testing.T) {
	cli, buf := newTestCLI()

	r := &model.HealthRecord{
		Key:          "record:abcdef123456",
		Date:         "2024-03-01",
		Weight:       72.4,
		DryWeight:    70,
		FluidRemoval: ptrF(3.6),
		Systolic:     85,
		Diastolic:    55,
		Notes:        "dizzy",
	}
	sys, dia := r.Pressure()
	a := app.Assessment{
		Fluid:    clinical.CheckFluidRemoval(r.DryWeight, r.FluidRemoval),
		Pressure: clinical.EvaluateBloodPressure(sys, dia, 0),
		AgeHint:  clinical.AgeHint(0),
	}

	cli.PrintRecordAdded(r, a)
	out := buf.String()

	assert.Contains(t, out, "Recorded session 2024-03-01 (abcdef)")
	assert.Contains(t, out, "72.4 kg (dry 70 kg, +2.4 kg)")
	assert.Contains(t, out, "Fluid removed: 3.6 L")
	assert.Contains(t, out, "85/55 mmHg")
	assert.Contains(t, out, "dizzy")
	assert.Contains(t, out, "5.1% of dry weight")
	assert.Contains(t, out, clinical.HypotensionAdvice)
	assert.Contains(t, out, clinical.AgeHint(0))
}

func TestCLIFormatterPrintAssessmentQuiet(t *testing.T) {
	cli, buf := newTestCLI()
	cli.PrintAssessment(app.Assessment{})
	assert.Empty(t, buf.String())
}

func TestFlags(t *testing.T) {
	assert.Equal(t, "", Flags(app.Assessment{}))

	high := clinical.EvaluateBloodPressure(intPtr(150), intPtr(80), 40)
	assert.Equal(t, "HIGH BP", Flags(app.Assessment{Pressure: high}))

	low := clinical.EvaluateBloodPressure(intPtr(85), intPtr(70), 40)
	fluid := clinical.CheckFluidRemoval(70, ptrF(4))
	assert.Equal(t, "LOW BP, FLUID 5.7%", Flags(app.Assessment{Pressure: low, Fluid: fluid}))
}

func intPtr(v int) *int { return &v }

func TestCLIFormatterPrintRecords(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		cli, buf := newTestCLI()
		cli.PrintRecords(nil, nil)
		assert.Contains(t, buf.String(), "No records yet.")
	})

	t.Run("rows", func(t *testing.T) {
		cli, buf := newTestCLI()
		records := []*model.HealthRecord{
			{Key: "record:111111aaaa", Date: "2024-03-01", Weight: 72, DryWeight: 70, Systolic: 150, Diastolic: 80},
			{Key: "record:222222bbbb", Date: "2024-03-03", Weight: 71, DryWeight: 70},
		}
		assess := func(r *model.HealthRecord) app.Assessment {
			sys, dia := r.Pressure()
			return app.Assessment{Pressure: clinical.EvaluateBloodPressure(sys, dia, 40)}
		}

		cli.PrintRecords(records, assess)
		out := buf.String()

		assert.Contains(t, out, "DATE")
		assert.Contains(t, out, "111111")
		assert.Contains(t, out, "150/80")
		assert.Contains(t, out, "HIGH BP")
		assert.Contains(t, out, "2024-03-03")
	})
}

func TestCLIFormatterPrintMedications(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		cli, buf := newTestCLI()
		cli.PrintMedications(nil, "2024-05-02")
		assert.Contains(t, buf.String(), "No medications yet.")
	})

	t.Run("stale_taken_flag", func(t *testing.T) {
		cli, buf := newTestCLI()
		meds := []*model.Medication{
			{Key: "medication:aaaaaa1", Name: "Iron", Dosage: "1 tab", ReminderTime: "08:00",
				TakenToday: true, LastTakenDate: "2024-05-01"},
			{Key: "medication:bbbbbb2", Name: "Calcitriol", Dosage: "0.25 mcg",
				TakenToday: true, LastTakenDate: "2024-05-02"},
		}
		cli.PrintMedications(meds, "2024-05-02")

		lines := bytes.Split(buf.Bytes(), []byte("\n"))
		require.GreaterOrEqual(t, len(lines), 4)
		assert.NotContains(t, string(lines[2]), "✓")
		assert.Contains(t, string(lines[3]), "✓")
	})
}

func TestCLIFormatterPrintMedication(t *testing.T) {
	cli, buf := newTestCLI()
	m := &model.Medication{Key: "medication:abcdef99", Name: "Iron", Dosage: "1 tab",
		Frequency: "once daily", ReminderTime: "08:00"}
	cli.PrintMedication(m, "2024-05-02")

	out := buf.String()
	assert.Contains(t, out, "Iron (abcdef)")
	assert.Contains(t, out, "Reminder: 08:00")
	assert.Contains(t, out, "Taken today: no")
}

func TestCLIFormatterPrintProfile(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		cli, buf := newTestCLI()
		cli.PrintProfile(&model.PatientProfile{}, 0, false, nil)
		assert.Contains(t, buf.String(), "No profile yet.")
	})

	t.Run("start_date", func(t *testing.T) {
		cli, buf := newTestCLI()
		p := &model.PatientProfile{Name: "Ana", Age: 70, Treatment: model.StartedOn("2023-01-15")}
		cli.PrintProfile(p, 14, true, nil)

		out := buf.String()
		assert.Contains(t, out, "Ana")
		assert.Contains(t, out, "Age: 70")
		assert.Contains(t, out, "On dialysis: "+clinical.FormatMonths(14))
		assert.Contains(t, out, "Started: 2023-01-15")
		assert.Contains(t, out, "limit: 150/90")
	})

	t.Run("invalid_start", func(t *testing.T) {
		cli, buf := newTestCLI()
		p := &model.PatientProfile{Name: "Ana", Treatment: model.StartedOn("2030-01-01")}
		cli.PrintProfile(p, 0, false, clinical.ErrStartAfterReference)

		out := buf.String()
		assert.Contains(t, out, "Age: unknown")
		assert.Contains(t, out, "invalid start date")
		assert.Contains(t, out, "limit: 140/90")
	})
}

func TestCLIFormatterPrintPermission(t *testing.T) {
	cli, buf := newTestCLI()
	cli.PrintPermission(model.PermissionGranted)
	cli.PrintPermission(model.PermissionDenied)
	cli.PrintPermission(model.PermissionUnrequested)

	out := buf.String()
	assert.Contains(t, out, "allowed")
	assert.Contains(t, out, "blocked")
	assert.Contains(t, out, "not been set up")
}

func TestCLIFormatterPrintTable(t *testing.T) {
	t.Run("with_rows", func(t *testing.T) {
		cli, buf := newTestCLI()

		cli.PrintTable([]string{"Name", "Dose"}, []TableRow{
			{Columns: []string{"Sevelamer", "800 mg"}},
			{Columns: []string{"Iron", "1 tab"}},
		})

		lines := bytes.Split(bytes.TrimRight(buf.Bytes(), "\n"), []byte("\n"))
		require.Len(t, lines, 4)
		assert.Equal(t, "Name       Dose", string(lines[0]))
		assert.Equal(t, "Sevelamer  800 mg", string(lines[2]))
		assert.Equal(t, "Iron       1 tab", string(lines[3]))
	})

	t.Run("no_rows", func(t *testing.T) {
		cli, buf := newTestCLI()
		cli.PrintTable([]string{"Name"}, nil)
		assert.Empty(t, buf.String())
	})
}

// =============================================================================
// JSON Formatter Tests
// =============================================================================

func TestNewJSONFormatter(t *testing.T) {
	f := NewFormatter()
	j := NewJSONFormatter(f)
	assert.Equal(t, f, j.Formatter)
}

func TestNewRecordOutput(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	r := &model.HealthRecord{Key: "record:abc", Date: "2024-03-01", Weight: 72, DryWeight: 70,
		FluidRemoval: ptrF(2), CreatedAt: created}

	out := NewRecordOutput(r, app.Assessment{Fluid: clinical.CheckFluidRemoval(70, ptrF(2))})
	assert.Equal(t, "abc", out.ID)
	assert.Equal(t, "2024-03-01T10:00:00Z", out.CreatedAt)
	require.NotNil(t, out.Assessment.FluidRatio)
	assert.InDelta(t, 2.0/70, *out.Assessment.FluidRatio, 1e-9)
	assert.False(t, out.Assessment.FluidWarning)
	assert.Nil(t, out.Assessment.BloodPressure)
}

func TestJSONFormatterPrintRecordAdded(t *testing.T) {
	var buf bytes.Buffer
	j := NewJSONFormatter(&Formatter{Writer: &buf})

	r := &model.HealthRecord{Key: "record:abc", Date: "2024-03-01", Weight: 72, DryWeight: 70,
		Systolic: 85, Diastolic: 95}
	sys, dia := r.Pressure()
	require.NoError(t, j.PrintRecordAdded(r, app.Assessment{Pressure: clinical.EvaluateBloodPressure(sys, dia, 40)}))

	var got RecordOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.NotNil(t, got.Assessment.BloodPressure)
	assert.Equal(t, "danger", got.Assessment.BloodPressure.Kind)
	assert.Equal(t, clinical.HypotensionAdvice, got.Assessment.BloodPressure.Advice)
	assert.Nil(t, got.Assessment.FluidRatio)
}

func TestJSONFormatterPrintRecords(t *testing.T) {
	var buf bytes.Buffer
	j := NewJSONFormatter(&Formatter{Writer: &buf})

	records := []*model.HealthRecord{{Key: "record:a", Date: "2024-03-01", Weight: 72, DryWeight: 70}}
	require.NoError(t, j.PrintRecords(records, []string{"record:bad"}, func(*model.HealthRecord) app.Assessment {
		return app.Assessment{}
	}))

	var got RecordsResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 1, got.TotalCount)
	assert.Equal(t, []string{"record:bad"}, got.Skipped)
}

func TestJSONFormatterPrintMedications(t *testing.T) {
	var buf bytes.Buffer
	j := NewJSONFormatter(&Formatter{Writer: &buf})

	meds := []*model.Medication{
		{Key: "medication:a", Name: "Iron", Dosage: "1 tab", TakenToday: true, LastTakenDate: "2024-05-01"},
	}
	require.NoError(t, j.PrintMedications(meds, "2024-05-02"))

	var got MedicationsResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "2024-05-02", got.Date)
	require.Len(t, got.Medications, 1)
	assert.Equal(t, "a", got.Medications[0].ID)
	assert.False(t, got.Medications[0].TakenToday)
}

func TestNewProfileOutput(t *testing.T) {
	p := &model.PatientProfile{Name: "Ana", Age: 60, Treatment: model.TreatedFor(14)}

	out := NewProfileOutput(p, 14, true, nil)
	assert.Equal(t, "months", out.TreatmentKind)
	require.NotNil(t, out.MonthsOnTreatment)
	assert.Equal(t, 14, *out.MonthsOnTreatment)

	out = NewProfileOutput(p, 0, false, errors.New("bad start"))
	assert.Nil(t, out.MonthsOnTreatment)
	assert.Equal(t, "bad start", out.TreatmentError)
}

func TestJSONFormatterPrintText(t *testing.T) {
	var buf bytes.Buffer
	j := NewJSONFormatter(&Formatter{Writer: &buf})

	require.NoError(t, j.PrintText(""))
	assert.Contains(t, buf.String(), `"status": "empty"`)
}

func TestJSONFormatterPrintPermission(t *testing.T) {
	var buf bytes.Buffer
	j := NewJSONFormatter(&Formatter{Writer: &buf})

	require.NoError(t, j.PrintPermission(model.PermissionGranted))
	assert.Contains(t, buf.String(), `"permission": "granted"`)
}

func TestJSONFormatterPrintError(t *testing.T) {
	var buf bytes.Buffer
	j := NewJSONFormatter(&Formatter{Writer: &buf})

	require.NoError(t, j.PrintError("error", "database locked", "stop the daemon"))

	var got ErrorResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "error", got.Status)
	assert.Equal(t, "database locked", got.Error)
	assert.Equal(t, "stop the daemon", got.Message)
}
