// Package scheduler drives medication reminders from a recurring cron job.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/renalog/renalog/internal/logging"
)

// DefaultPollInterval is how often the reminder checker runs.
const DefaultPollInterval = 5 * time.Second

// Scheduler runs a ReminderChecker on a fixed interval. Runs never overlap:
// a tick that is still running when the next one is due causes that one to
// be skipped.
type Scheduler struct {
	cron    *cron.Cron
	checker *ReminderChecker
	poll    time.Duration

	mu       sync.Mutex
	running  bool
	entryID  cron.EntryID
	lastTick time.Time
	fired    int

	// initial tracks the first run, which cron does not own
	initial sync.WaitGroup
}

// NewScheduler creates a scheduler for checker. A non-positive poll uses
// DefaultPollInterval.
func NewScheduler(checker *ReminderChecker, poll time.Duration) *Scheduler {
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	logger := cronLogger{}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		checker: checker,
		poll:    poll,
	}
}

// Start runs the first check immediately and then every poll interval.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	id, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.poll), s.run)
	if err != nil {
		return fmt.Errorf("failed to add reminder check: %w", err)
	}
	s.entryID = id
	s.running = true

	// Fire in the start minute rather than waiting a full interval
	s.initial.Add(1)
	go func() {
		defer s.initial.Done()
		s.run()
	}()

	s.cron.Start()
	logging.DebugLog("scheduler started", "poll", s.poll.String())
	return nil
}

// Stop stops the scheduler and waits for a running check to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cron.Remove(s.entryID)
	s.mu.Unlock()

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.initial.Wait()

	logging.DebugLog("scheduler stopped")
}

// run performs one tick.
func (s *Scheduler) run() {
	ctx := logging.NewRequestContext(context.Background())
	fired := s.checker.Tick(ctx)

	s.mu.Lock()
	s.lastTick = time.Now()
	s.fired += fired
	s.mu.Unlock()
}

// Running reports whether the scheduler has been started and not stopped.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// LastTick returns when the checker last ran.
func (s *Scheduler) LastTick() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastTick
}

// RemindersFired returns how many reminders were emitted since Start.
func (s *Scheduler) RemindersFired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fired
}

// NextRun returns the next scheduled check, or zero when stopped.
func (s *Scheduler) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// cronLogger routes cron's internal logging to slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	logging.DebugLog("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	logging.Error("cron: "+msg, append(keysAndValues, logging.KeyError, err)...)
}
