package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/renalog/renalog/internal/app"
	"github.com/renalog/renalog/internal/config"
	"github.com/renalog/renalog/internal/logging"
	"github.com/renalog/renalog/internal/model"
	"github.com/renalog/renalog/internal/notify"
	"github.com/renalog/renalog/internal/scheduler"
)

// tickMsg is sent when the timer ticks.
type tickMsg time.Time

// summaryMsg carries a finished AI summary and the generation that asked
// for it.
type summaryMsg struct {
	gen  int
	text string
}

// reminderMsg is sent by the in-process scheduler when a reminder fires.
type reminderMsg struct {
	n *model.Notification
}

// DashboardModel is the main bubbletea model for the dashboard.
type DashboardModel struct {
	app   *app.Controller
	clock scheduler.Clock

	// Data
	state      app.State
	latest     *model.HealthRecord
	assessment app.Assessment
	months     int
	hasMonths  bool
	monthsErr  error
	today      string

	// Summary. summaryGen is bumped by every request and every reload; a
	// result is shown only if its generation is still current.
	summary        string
	summaryLoading bool
	summaryGen     int

	// UI state
	cursor     int
	width      int
	height     int
	err        error
	message    string
	messageExp time.Time

	// Configuration
	refreshInterval time.Duration
	summaryTimeout  time.Duration
}

// DashboardConfig holds configuration for the dashboard.
type DashboardConfig struct {
	App             *app.Controller
	Config          *config.Config
	Clock           scheduler.Clock
	RefreshInterval time.Duration
	SummaryTimeout  time.Duration
}

// NewDashboardModel creates a new dashboard model.
func NewDashboardModel(config DashboardConfig) *DashboardModel {
	if config.RefreshInterval == 0 {
		config.RefreshInterval = time.Second
	}
	if config.SummaryTimeout == 0 {
		config.SummaryTimeout = time.Minute
	}
	if config.Clock == nil {
		config.Clock = scheduler.RealClock{}
	}

	m := &DashboardModel{
		app:             config.App,
		clock:           config.Clock,
		refreshInterval: config.RefreshInterval,
		summaryTimeout:  config.SummaryTimeout,
	}
	m.loadData()
	return m
}

// Init initializes the model.
func (m *DashboardModel) Init() tea.Cmd {
	return m.tickCmd()
}

// Update handles messages and updates the model.
func (m *DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		// Clear expired messages
		if !m.messageExp.IsZero() && m.clock.Now().After(m.messageExp) {
			m.message = ""
			m.messageExp = time.Time{}
		}
		m.loadData()
		return m, m.tickCmd()

	case summaryMsg:
		if msg.gen != m.summaryGen {
			logging.DebugLog("stale summary discarded", "gen", msg.gen, "current", m.summaryGen)
			return m, nil
		}
		m.summary = msg.text
		m.summaryLoading = false
		return m, nil

	case reminderMsg:
		m.setMessage(fmt.Sprintf("⏰ %s: %s", msg.n.Title, msg.n.Message), time.Minute)
		return m, nil
	}

	return m, nil
}

// handleKeyPress handles keyboard input.
func (m *DashboardModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "down", "j":
		if m.cursor < len(m.state.Medications)-1 {
			m.cursor++
		}
		return m, nil

	case " ", "space", "enter":
		m.toggleSelected()
		return m, nil

	case "s":
		m.summaryGen++
		m.summaryLoading = true
		return m, m.summaryCmd(m.summaryGen)

	case "r":
		m.reload()
		m.setMessage("Refreshed", time.Second)
		return m, nil
	}

	return m, nil
}

// View renders the dashboard.
func (m *DashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var sections []string

	sections = append(sections, m.renderHeader())

	if m.err != nil {
		sections = append(sections, StyleError.Render(fmt.Sprintf("Error: %v", m.err)))
	}
	if m.message != "" {
		sections = append(sections, StyleWarning.Render(m.message))
	}

	profile := &ProfileComponent{
		Profile: m.state.Profile,
		Months:  m.months,
		HasTime: m.hasMonths,
		Err:     m.monthsErr,
		Width:   m.width,
	}
	sections = append(sections, profile.View())

	record := &RecordComponent{Record: m.latest, Assessment: m.assessment, Width: m.width}
	sections = append(sections, record.View())

	meds := &MedicationsComponent{
		Medications: m.state.Medications,
		Today:       m.today,
		Cursor:      m.cursor,
		Width:       m.width,
	}
	sections = append(sections, meds.View())

	summary := &SummaryComponent{Text: m.summary, Loading: m.summaryLoading, Width: m.width}
	if v := summary.View(); v != "" {
		sections = append(sections, v)
	}

	sections = append(sections, HelpBar())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderHeader renders the dashboard header.
func (m *DashboardModel) renderHeader() string {
	title := StyleTitle.Render("renalog")
	now := m.clock.Now().Format("Mon Jan 2, 15:04:05")
	timeStr := StyleSubtitle.Render(now)

	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", timeStr) + "\n"
}

// loadData copies the controller's current state into the model.
func (m *DashboardModel) loadData() {
	m.state = m.app.State()
	m.today = m.app.Today()
	m.latest = m.app.LatestRecord()
	if m.latest != nil {
		m.assessment = m.app.Assess(m.latest)
	} else {
		m.assessment = app.Assessment{}
	}
	m.months, m.hasMonths, m.monthsErr = m.app.MonthsOnTreatment()

	if m.cursor >= len(m.state.Medications) {
		m.cursor = len(m.state.Medications) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// reload re-reads the store and invalidates any summary in flight.
func (m *DashboardModel) reload() {
	if err := m.app.Load(); err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.summaryGen++
	m.summaryLoading = false
	m.loadData()
}

func (m *DashboardModel) toggleSelected() {
	if len(m.state.Medications) == 0 {
		return
	}
	selected := m.state.Medications[m.cursor]
	med, err := m.app.ToggleTaken(selected.ID())
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	if med.IsTakenOn(m.app.Today()) {
		m.setMessage(fmt.Sprintf("%s marked as taken", med.Name), 2*time.Second)
	} else {
		m.setMessage(fmt.Sprintf("%s marked as not taken", med.Name), 2*time.Second)
	}
	m.loadData()
}

// setMessage sets a temporary message.
func (m *DashboardModel) setMessage(msg string, duration time.Duration) {
	m.message = msg
	m.messageExp = m.clock.Now().Add(duration)
}

// tickCmd returns a command that sends a tick message.
func (m *DashboardModel) tickCmd() tea.Cmd {
	return tea.Tick(m.refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// summaryCmd requests a summary in the background, tagged with gen.
func (m *DashboardModel) summaryCmd(gen int) tea.Cmd {
	ctrl := m.app
	timeout := m.summaryTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return summaryMsg{gen: gen, text: ctrl.Summarize(ctx)}
	}
}

// ReminderSink returns the sink used by the dashboard's scheduler:
// reminders are shown in the dashboard through send, and configured
// webhooks still receive them. Both respect the notification permission.
func ReminderSink(ctrl *app.Controller, cfg *config.Config, send func(tea.Msg)) notify.Sink {
	inline := notify.SinkFunc(func(_ context.Context, n *model.Notification) error {
		send(reminderMsg{n: n})
		return nil
	})
	sinks := notify.Multi{notify.NewGated(inline, ctrl)}
	if cfg != nil {
		sinks = append(sinks, notify.FromConfig(cfg, nil, false, ctrl))
	}
	return sinks
}

// Run starts the dashboard TUI together with an in-process reminder
// scheduler.
func Run(config DashboardConfig) error {
	m := NewDashboardModel(config)
	p := tea.NewProgram(m, tea.WithAltScreen())

	poll := 5 * time.Second
	if config.Config != nil {
		poll = config.Config.Scheduler.PollInterval
	}
	checker := scheduler.NewReminderChecker(config.App, ReminderSink(config.App, config.Config, p.Send), m.clock)
	sched := scheduler.NewScheduler(checker, poll)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	_, err := p.Run()
	return err
}
