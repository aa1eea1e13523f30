package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/renalog/renalog/internal/metrics"
	"github.com/renalog/renalog/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	timeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// TerminalSink writes one line per notification to a writer, optionally
// ringing the terminal bell.
type TerminalSink struct {
	mu    sync.Mutex
	w     io.Writer
	bell  bool
	color bool
}

// NewTerminalSink creates a terminal sink.
func NewTerminalSink(w io.Writer, bell, color bool) *TerminalSink {
	return &TerminalSink{w: w, bell: bell, color: color}
}

// Notify writes n.
func (s *TerminalSink) Notify(_ context.Context, n *model.Notification) error {
	stamp := n.Timestamp.Format(model.ClockLayout)
	title := n.Title
	if s.color {
		stamp = timeStyle.Render(stamp)
		title = titleStyle.Render(title)
	}

	line := fmt.Sprintf("[%s] %s", stamp, title)
	if n.Message != "" {
		line += " - " + n.Message
	}
	if s.bell {
		line += "\a"
	}

	s.mu.Lock()
	_, err := fmt.Fprintln(s.w, line)
	s.mu.Unlock()

	status := metrics.StatusOK
	if err != nil {
		status = metrics.StatusError
	}
	metrics.RecordNotification("terminal", status)
	return err
}
