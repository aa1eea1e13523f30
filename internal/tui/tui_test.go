package tui

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renalog/renalog/internal/app"
	"github.com/renalog/renalog/internal/model"
	"github.com/renalog/renalog/internal/scheduler"
	"github.com/renalog/renalog/internal/storage"
)

type fakeGateway struct {
	mu    sync.Mutex
	calls int
}

func (g *fakeGateway) Summarize(context.Context, []*model.HealthRecord, *model.PatientProfile) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.calls == 1 {
		return "first summary"
	}
	return "second summary"
}

func (g *fakeGateway) Transcribe(context.Context, []byte, string) string { return "" }

var refNow = time.Date(2024, 5, 2, 9, 15, 0, 0, time.Local)

func newController(t *testing.T) (*app.Controller, *scheduler.FakeClock) {
	db, err := storage.Open(storage.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	clock := scheduler.NewFakeClock(refNow)
	c := app.New(db, &fakeGateway{}, clock)
	require.NoError(t, c.Load())
	return c, clock
}

func newDashboard(t *testing.T, c *app.Controller, clock scheduler.Clock) *DashboardModel {
	m := NewDashboardModel(DashboardConfig{App: c, Clock: clock})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func addMeds(t *testing.T, c *app.Controller, names ...string) {
	for _, name := range names {
		_, err := c.AddMedication(app.MedicationInput{Name: name, Dosage: "1 tab", ReminderTime: "09:15"})
		require.NoError(t, err)
	}
}

// =============================================================================
// ProgressBar Tests
// =============================================================================

func TestProgressBar(t *testing.T) {
	tests := []struct {
		name       string
		percentage float64
		width      int
	}{
		{"zero", 0, 10},
		{"half", 50, 10},
		{"full", 100, 10},
		{"over", 150, 10},
		{"negative", -10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := ProgressBar(tt.percentage, tt.width)
			assert.NotEmpty(t, bar)
		})
	}
}

func TestProgressBarWidth(t *testing.T) {
	bar10 := ProgressBar(50, 10)
	bar20 := ProgressBar(50, 20)

	assert.Greater(t, len(bar20), len(bar10))
}

// =============================================================================
// Component Tests
// =============================================================================

func TestProfileComponentView(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		pc := &ProfileComponent{Width: 80}
		assert.Contains(t, pc.View(), "No profile yet")
	})

	t.Run("with_months", func(t *testing.T) {
		pc := &ProfileComponent{
			Profile: model.PatientProfile{Name: "Ana", Age: 70},
			Months:  16,
			HasTime: true,
			Width:   80,
		}
		view := pc.View()
		assert.Contains(t, view, "Ana")
		assert.Contains(t, view, "age 70")
		assert.Contains(t, view, "1 year")
	})

	t.Run("invalid_start", func(t *testing.T) {
		pc := &ProfileComponent{
			Profile: model.PatientProfile{Name: "Ana"},
			Err:     assert.AnError,
			Width:   80,
		}
		assert.Contains(t, pc.View(), "invalid start date")
	})
}

func TestRecordComponentView(t *testing.T) {
	t.Run("no_record", func(t *testing.T) {
		rc := &RecordComponent{Width: 80}
		assert.Contains(t, rc.View(), "No records yet")
	})

	t.Run("with_findings", func(t *testing.T) {
		c, _ := newController(t)
		rec, a, err := c.AddRecord(app.RecordInput{
			Date: "today", Weight: "74", DryWeight: "70", FluidRemoval: "4", BloodPressure: "85/95",
		})
		require.NoError(t, err)

		view := (&RecordComponent{Record: rec, Assessment: a, Width: 100}).View()
		assert.Contains(t, view, "2024-05-02")
		assert.Contains(t, view, "74 kg")
		assert.Contains(t, view, "85/95")
		assert.Contains(t, view, "⚠ Fluid removal")
		assert.Contains(t, view, "‼")
	})
}

func TestMedicationsComponent(t *testing.T) {
	meds := []*model.Medication{
		{Name: "Sevelamer", Dosage: "800 mg", ReminderTime: "08:00", TakenToday: true, LastTakenDate: "2024-05-02"},
		{Name: "Calcitriol", Dosage: "0.25 mcg", TakenToday: true, LastTakenDate: "2024-05-01"},
	}
	mc := &MedicationsComponent{Medications: meds, Today: "2024-05-02", Cursor: 1, Width: 80}

	assert.Equal(t, 1, mc.Taken())
	view := mc.View()
	assert.Contains(t, view, "[x] Sevelamer")
	assert.Contains(t, view, "> [ ] Calcitriol")
	assert.Contains(t, view, "at 08:00")
	assert.Contains(t, view, "1/2 taken")

	empty := &MedicationsComponent{Width: 80}
	assert.Contains(t, empty.View(), "No medications yet")
}

func TestSummaryComponent(t *testing.T) {
	assert.Empty(t, (&SummaryComponent{Width: 80}).View())
	assert.Contains(t, (&SummaryComponent{Loading: true, Width: 80}).View(), "Generating")
	assert.Contains(t, (&SummaryComponent{Text: "Stable week", Width: 80}).View(), "Stable week")
}

func TestHelpBar(t *testing.T) {
	help := HelpBar()
	assert.Contains(t, help, "toggle taken")
	assert.Contains(t, help, "summary")
	assert.Contains(t, help, "quit")
}

// =============================================================================
// Dashboard Tests
// =============================================================================

func TestDashboardLoadingView(t *testing.T) {
	c, clock := newController(t)
	m := NewDashboardModel(DashboardConfig{App: c, Clock: clock})
	assert.Equal(t, "Loading...", m.View())
}

func TestDashboardView(t *testing.T) {
	c, clock := newController(t)
	_, err := c.SaveProfile(app.ProfileInput{Name: "Ana", Age: "70", StartDate: "2023-01-15"})
	require.NoError(t, err)
	addMeds(t, c, "Sevelamer")

	m := newDashboard(t, c, clock)
	view := m.View()
	assert.Contains(t, view, "renalog")
	assert.Contains(t, view, "Ana")
	assert.Contains(t, view, "1 year 4 months")
	assert.Contains(t, view, "No records yet")
	assert.Contains(t, view, "Sevelamer")
}

func TestDashboardCursorAndToggle(t *testing.T) {
	c, clock := newController(t)
	addMeds(t, c, "Alpha", "Beta")
	m := newDashboard(t, c, clock)

	m.Update(key("up"))
	assert.Equal(t, 0, m.cursor)
	m.Update(key("down"))
	m.Update(key("down"))
	assert.Equal(t, 1, m.cursor)

	selected := m.state.Medications[1]
	m.Update(key("space"))
	med, err := c.FindMedication(selected.ID())
	require.NoError(t, err)
	assert.True(t, c.IsTakenToday(med))
	assert.Contains(t, m.message, "marked as taken")

	m.Update(key("enter"))
	med, err = c.FindMedication(selected.ID())
	require.NoError(t, err)
	assert.False(t, c.IsTakenToday(med))
	assert.Contains(t, m.message, "marked as not taken")
}

func TestDashboardToggleWithoutMedications(t *testing.T) {
	c, clock := newController(t)
	m := newDashboard(t, c, clock)

	m.Update(key("space"))
	assert.NoError(t, m.err)
	assert.Empty(t, m.message)
}

func TestDashboardSummaryDiscardsStaleResults(t *testing.T) {
	c, clock := newController(t)
	m := newDashboard(t, c, clock)

	_, first := m.Update(key("s"))
	require.NotNil(t, first)
	_, second := m.Update(key("s"))
	require.NotNil(t, second)
	assert.True(t, m.summaryLoading)

	firstMsg := first()
	secondMsg := second()

	m.Update(firstMsg)
	assert.Empty(t, m.summary)
	assert.True(t, m.summaryLoading)

	m.Update(secondMsg)
	assert.Equal(t, "second summary", m.summary)
	assert.False(t, m.summaryLoading)
	assert.Contains(t, m.View(), "second summary")
}

func TestDashboardReloadInvalidatesSummary(t *testing.T) {
	c, clock := newController(t)
	m := newDashboard(t, c, clock)

	_, cmd := m.Update(key("s"))
	m.Update(key("r"))
	assert.False(t, m.summaryLoading)
	assert.Equal(t, "Refreshed", m.message)

	m.Update(cmd())
	assert.Empty(t, m.summary)
}

func TestDashboardReminderAndMessageExpiry(t *testing.T) {
	c, clock := newController(t)
	m := newDashboard(t, c, clock)

	n := model.NewNotification(model.NotifyMedication, "Time to take Sevelamer", "800 mg")
	m.Update(reminderMsg{n: n})
	assert.Contains(t, m.message, "Time to take Sevelamer")

	clock.Advance(2 * time.Minute)
	m.Update(tickMsg(clock.Now()))
	assert.Empty(t, m.message)
}

func TestDashboardQuit(t *testing.T) {
	c, clock := newController(t)
	m := newDashboard(t, c, clock)

	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

// =============================================================================
// ReminderSink Tests
// =============================================================================

func TestReminderSinkRespectsPermission(t *testing.T) {
	c, clock := newController(t)
	addMeds(t, c, "Sevelamer")

	var mu sync.Mutex
	var got []tea.Msg
	send := func(msg tea.Msg) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, msg)
	}

	checker := scheduler.NewReminderChecker(c, ReminderSink(c, nil, send), clock)
	checker.Tick(context.Background())
	mu.Lock()
	assert.Empty(t, got)
	mu.Unlock()

	require.NoError(t, c.SetPermission(model.PermissionGranted))
	_, err := c.AddMedication(app.MedicationInput{Name: "Calcitriol", Dosage: "0.25 mcg", ReminderTime: "09:16"})
	require.NoError(t, err)
	clock.Advance(time.Minute)
	checker.Tick(context.Background())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	msg, ok := got[0].(reminderMsg)
	require.True(t, ok)
	assert.Contains(t, msg.n.Title, "Calcitriol")
}
