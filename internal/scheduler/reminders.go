package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/renalog/renalog/internal/logging"
	"github.com/renalog/renalog/internal/metrics"
	"github.com/renalog/renalog/internal/model"
	"github.com/renalog/renalog/internal/notify"
)

// MedicationSource lists the medications to check for reminders.
type MedicationSource interface {
	ListMedications() ([]*model.Medication, error)
}

// MedicationSourceFunc adapts a function to MedicationSource.
type MedicationSourceFunc func() ([]*model.Medication, error)

// ListMedications calls f.
func (f MedicationSourceFunc) ListMedications() ([]*model.Medication, error) {
	return f()
}

// ReminderChecker emits one notification per due medication per minute.
//
// The only state is the last minute checked. A tick in the same minute is a
// no-op, so a fast poll interval never duplicates reminders, and minutes
// that were never observed are not caught up.
type ReminderChecker struct {
	source MedicationSource
	sink   notify.Sink
	clock  Clock

	mu         sync.Mutex
	lastMinute string
}

// NewReminderChecker creates a reminder checker.
func NewReminderChecker(source MedicationSource, sink notify.Sink, clock Clock) *ReminderChecker {
	if clock == nil {
		clock = RealClock{}
	}
	return &ReminderChecker{source: source, sink: sink, clock: clock}
}

// LastMinute returns the last minute checked as HH:MM, or "" before the
// first tick.
func (c *ReminderChecker) LastMinute() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastMinute
}

// Tick checks the current minute and emits reminders for medications due
// now and not yet taken today. It returns the number of reminders emitted.
// Delivery errors are logged and counted, never returned or retried.
//
// Deliveries run concurrently and share a deadline at the end of the
// minute, so a slow sink cannot hold up the next minute's check.
func (c *ReminderChecker) Tick(ctx context.Context) int {
	now := c.clock.Now()
	minute := model.Minute(now)
	if !c.claim(minute) {
		metrics.RecordTick(metrics.TickSkipped)
		return 0
	}

	meds, err := c.source.ListMedications()
	if err != nil {
		metrics.RecordTick(metrics.TickFailed)
		logging.WarnContext(ctx, "failed to list medications",
			logging.KeyMinute, minute, logging.KeyError, err)
		return 0
	}
	metrics.RecordTick(metrics.TickChecked)

	day := model.Day(now)
	var due []*model.Medication
	for _, m := range meds {
		if m.IsDueAt(minute, day) {
			due = append(due, m)
		}
	}
	if len(due) == 0 {
		return 0
	}

	dctx, cancel := context.WithTimeout(ctx, untilNextMinute(now))
	defer cancel()

	var wg sync.WaitGroup
	for _, m := range due {
		metrics.RecordReminderFired()
		wg.Add(1)
		go func(m *model.Medication) {
			defer wg.Done()
			c.deliver(dctx, m, now, minute)
		}(m)
	}
	wg.Wait()

	return len(due)
}

// claim records minute as checked. It reports false when the minute was
// already checked.
func (c *ReminderChecker) claim(minute string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if minute == c.lastMinute {
		return false
	}
	c.lastMinute = minute
	return true
}

func (c *ReminderChecker) deliver(ctx context.Context, m *model.Medication, now time.Time, minute string) {
	if err := c.sink.Notify(ctx, model.MedicationReminder(m, now)); err != nil {
		if !errors.Is(err, notify.ErrNotPermitted) {
			metrics.RecordNotification("reminder", metrics.StatusError)
		}
		logging.DebugContext(ctx, "reminder not delivered",
			logging.KeyMedication, m.Name, logging.KeyMinute, minute, logging.KeyError, err)
		return
	}
	logging.DebugContext(ctx, "reminder delivered",
		logging.KeyMedication, m.Name, logging.KeyMinute, minute)
}

// untilNextMinute returns the time left before the minute containing now
// ends.
func untilNextMinute(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), now.Minute()+1, 0, 0, now.Location())
	return next.Sub(now)
}
