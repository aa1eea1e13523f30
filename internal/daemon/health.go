package daemon

import (
	"encoding/json"
	"runtime"
	"sort"
	"sync"
	"time"
)

// Health states reported by /healthz.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// staleAfter is how long the scheduler may go without a tick before the
// daemon reports itself degraded. A reminder minute could be missed beyond it.
const staleAfter = time.Minute

// SchedulerStatus is the view of the reminder scheduler the health check needs.
type SchedulerStatus interface {
	Running() bool
	LastTick() time.Time
	NextRun() time.Time
	RemindersFired() int
}

// HealthStatus represents the current health state of the daemon.
type HealthStatus struct {
	Status        string          `json:"status"`
	UptimeSeconds int64           `json:"uptime_seconds"`
	MemoryMB      float64         `json:"memory_mb"`
	Goroutines    int             `json:"goroutines"`
	Version       string          `json:"version,omitempty"`
	Scheduler     SchedulerHealth `json:"scheduler"`
	Checks        []CheckResult   `json:"checks,omitempty"`
}

// SchedulerHealth reports the reminder scheduler's progress.
type SchedulerHealth struct {
	Running        bool       `json:"running"`
	LastTick       *time.Time `json:"last_tick,omitempty"`
	NextRun        *time.Time `json:"next_run,omitempty"`
	RemindersFired int        `json:"reminders_fired"`
}

// CheckResult represents the result of a single health check.
type CheckResult struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

// HealthChecker provides health status for the daemon.
type HealthChecker struct {
	mu           sync.RWMutex
	startTime    time.Time
	version      string
	scheduler    SchedulerStatus
	customChecks map[string]func() error
	now          func() time.Time
}

// NewHealthChecker creates a new health checker.
func NewHealthChecker(version string, sched SchedulerStatus) *HealthChecker {
	return &HealthChecker{
		startTime:    time.Now(),
		version:      version,
		scheduler:    sched,
		customChecks: make(map[string]func() error),
		now:          time.Now,
	}
}

// Check runs every health check and returns the status.
func (h *HealthChecker) Check() *HealthStatus {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	status := &HealthStatus{
		UptimeSeconds: int64(h.Uptime().Seconds()),
		MemoryMB:      float64(memStats.Alloc) / 1024 / 1024,
		Goroutines:    runtime.NumGoroutine(),
		Version:       h.version,
		Checks:        h.runChecks(),
	}
	if h.scheduler != nil {
		status.Scheduler = SchedulerHealth{
			Running:        h.scheduler.Running(),
			LastTick:       timePtr(h.scheduler.LastTick()),
			NextRun:        timePtr(h.scheduler.NextRun()),
			RemindersFired: h.scheduler.RemindersFired(),
		}
	}
	status.Status = h.determineStatus(status)
	return status
}

// determineStatus folds the scheduler state and check results into one state.
func (h *HealthChecker) determineStatus(s *HealthStatus) string {
	if h.scheduler != nil && !s.Scheduler.Running {
		return StatusUnhealthy
	}
	for _, c := range s.Checks {
		if !c.Healthy {
			return StatusUnhealthy
		}
	}
	if last := s.Scheduler.LastTick; last != nil && h.now().Sub(*last) > staleAfter {
		return StatusDegraded
	}
	return StatusHealthy
}

func (h *HealthChecker) runChecks() []CheckResult {
	h.mu.RLock()
	names := make([]string, 0, len(h.customChecks))
	for name := range h.customChecks {
		names = append(names, name)
	}
	checks := make(map[string]func() error, len(h.customChecks))
	for name, check := range h.customChecks {
		checks[name] = check
	}
	h.mu.RUnlock()

	sort.Strings(names)
	results := make([]CheckResult, 0, len(names))
	for _, name := range names {
		result := CheckResult{Name: name, Healthy: true}
		if err := checks[name](); err != nil {
			result.Healthy = false
			result.Error = err.Error()
		}
		results = append(results, result)
	}
	return results
}

// AddCheck adds a custom health check function.
func (h *HealthChecker) AddCheck(name string, check func() error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.customChecks[name] = check
}

// RemoveCheck removes a custom health check.
func (h *HealthChecker) RemoveCheck(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.customChecks, name)
}

// JSON returns the health status as JSON.
func (h *HealthChecker) JSON() ([]byte, error) {
	return json.MarshalIndent(h.Check(), "", "  ")
}

// Uptime returns how long the daemon has been running.
func (h *HealthChecker) Uptime() time.Duration {
	return h.now().Sub(h.startTime)
}

// IsHealthy returns true if the daemon is healthy.
func (h *HealthChecker) IsHealthy() bool {
	return h.Check().Status == StatusHealthy
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
