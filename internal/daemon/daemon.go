package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/renalog/renalog/internal/config"
	"github.com/renalog/renalog/internal/logging"
	"github.com/renalog/renalog/internal/metrics"
	"github.com/renalog/renalog/internal/notify"
	"github.com/renalog/renalog/internal/scheduler"
	"github.com/renalog/renalog/internal/storage"
)

const (
	shutdownTimeout = 5 * time.Second
	stopTimeout     = 10 * time.Second
)

// Options configures a daemon.
type Options struct {
	Config *config.Config
	// DBPath is the badger directory. It is opened read-only once per check
	// so the CLI can keep writing while the daemon runs.
	DBPath  string
	Out     io.Writer
	Color   bool
	Version string

	// Source, Permissions and Clock replace the on-disk reader and the
	// system clock.
	Source      scheduler.MedicationSource
	Permissions notify.PermissionSource
	Clock       scheduler.Clock

	// PIDPath and StatePath default to the XDG state directory.
	PIDPath   string
	StatePath string
}

// Daemon manages the foreground reminder process.
type Daemon struct {
	opts      Options
	pidFile   *PIDFile
	statePath string

	scheduler *scheduler.Scheduler
	health    *HealthChecker

	mu    sync.Mutex
	addr  string
	ready chan struct{}
}

// Status represents the daemon status.
type Status struct {
	Running   bool      `json:"running"`
	PID       int       `json:"pid,omitempty"`
	Database  string    `json:"database,omitempty"`
	StartedAt time.Time `json:"started_at,omitempty"`
	Uptime    string    `json:"uptime,omitempty"`
	Listen    string    `json:"listen,omitempty"`
}

// NewDaemon creates a new daemon manager.
func NewDaemon(opts Options) *Daemon {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	pidPath := opts.PIDPath
	if pidPath == "" {
		pidPath = GetPIDFilePath()
	}
	statePath := opts.StatePath
	if statePath == "" {
		statePath = getStatePath()
	}
	return &Daemon{
		opts:      opts,
		pidFile:   NewPIDFileAt(pidPath),
		statePath: statePath,
		ready:     make(chan struct{}),
	}
}

// GetStatus returns the current daemon status.
func (d *Daemon) GetStatus() *Status {
	status := &Status{}

	if owner, ok := d.pidFile.Running(); ok {
		status.Running = true
		status.PID = owner.PID
		status.Database = owner.Database

		if state, err := d.readState(); err == nil {
			status.StartedAt = state.StartedAt
			status.Uptime = formatUptime(time.Since(state.StartedAt))
			status.Listen = state.Listen
		}
	}

	return status
}

// IsRunning returns true if the daemon is running.
func (d *Daemon) IsRunning() bool {
	return d.pidFile.IsRunning()
}

// Ready is closed once the scheduler and listener are up.
func (d *Daemon) Ready() <-chan struct{} {
	return d.ready
}

// Addr returns the health listener address, or "" when disabled.
func (d *Daemon) Addr() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.addr
}

// Run starts the reminder scheduler and blocks until ctx is cancelled or a
// shutdown signal arrives.
func (d *Daemon) Run(ctx context.Context) error {
	if d.IsRunning() {
		return ErrAlreadyRunning
	}

	source, perms, err := d.sources()
	if err != nil {
		return err
	}

	if err := d.pidFile.Acquire(d.opts.DBPath); err != nil {
		return err
	}
	defer d.pidFile.Remove()

	cfg := d.opts.Config
	sink := notify.FromConfig(cfg, d.opts.Out, d.opts.Color, perms)
	checker := scheduler.NewReminderChecker(source, sink, d.opts.Clock)
	d.scheduler = scheduler.NewScheduler(checker, cfg.Scheduler.PollInterval)
	d.health = NewHealthChecker(d.opts.Version, d.scheduler)
	if reader, ok := source.(*storage.Reader); ok {
		d.health.AddCheck("database", func() error {
			return reader.View(func(*storage.DB) error { return nil })
		})
	}

	if err := d.scheduler.Start(); err != nil {
		return err
	}
	defer d.scheduler.Stop()

	var server *http.Server
	if cfg.Daemon.ListenAddr != "" {
		ln, err := net.Listen("tcp", cfg.Daemon.ListenAddr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", cfg.Daemon.ListenAddr, err)
		}
		d.mu.Lock()
		d.addr = ln.Addr().String()
		d.mu.Unlock()

		server = &http.Server{
			Handler:           d.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error("health server failed", logging.KeyError, err)
			}
		}()
	}

	if err := d.writeState(&DaemonState{StartedAt: time.Now(), Listen: d.Addr()}); err != nil {
		logging.Warn("failed to write daemon state file", logging.KeyError, err)
	}
	defer d.removeState()

	sigHandler := NewSignalHandler()
	sigHandler.Setup()
	defer sigHandler.Cleanup()

	logging.Info("daemon started", "pid", os.Getpid(), "listen", d.Addr(),
		"poll", cfg.Scheduler.PollInterval.String())
	close(d.ready)

	if sig := sigHandler.Wait(ctx); sig != nil {
		logging.Info("received signal", "signal", sig.String())
	}

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logging.Warn("health server shutdown", logging.KeyError, err)
		}
	}
	return nil
}

// sources returns the medication and permission sources, defaulting to a
// read-only view of the on-disk database.
func (d *Daemon) sources() (scheduler.MedicationSource, notify.PermissionSource, error) {
	source, perms := d.opts.Source, d.opts.Permissions
	if source != nil && perms != nil {
		return source, perms, nil
	}
	if d.opts.DBPath == "" || d.opts.DBPath == storage.MemoryPath {
		return nil, nil, ErrNeedsDiskDB
	}
	reader := storage.NewReader(d.opts.DBPath)
	if source == nil {
		source = reader
	}
	if perms == nil {
		perms = reader
	}
	return source, perms, nil
}

// Handler serves /healthz and /metrics.
func (d *Daemon) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Get("/healthz", d.handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	return r
}

func (d *Daemon) handleHealth(w http.ResponseWriter, r *http.Request) {
	if d.health == nil {
		http.Error(w, "starting", http.StatusServiceUnavailable)
		return
	}
	status := d.health.Check()

	w.Header().Set("Content-Type", "application/json")
	if status.Status != StatusHealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(status); err != nil {
		logging.DebugContext(r.Context(), "failed to write health response", logging.KeyError, err)
	}
}

// Stop stops the running daemon.
func (d *Daemon) Stop() error {
	pid := d.pidFile.GetRunningPID()
	if pid == 0 {
		return ErrNotRunning
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process: %w", err)
	}

	if err := process.Signal(os.Interrupt); err != nil {
		if err := process.Kill(); err != nil {
			return fmt.Errorf("failed to stop daemon: %w", err)
		}
	}

	// The daemon is not our child, so poll instead of Wait
	deadline := time.Now().Add(stopTimeout)
	for IsProcessRunning(pid) && time.Now().Before(deadline) {
		time.Sleep(100 * time.Millisecond)
	}
	if IsProcessRunning(pid) {
		process.Kill()
	}

	d.pidFile.Remove()
	d.removeState()

	return nil
}

// DaemonState holds persistent daemon state.
type DaemonState struct {
	StartedAt time.Time `json:"started_at"`
	Listen    string    `json:"listen,omitempty"`
}

// getStatePath returns the path to the state file.
func getStatePath() string {
	return filepath.Join(xdg.StateHome, AppName, "daemon.json")
}

// writeState writes daemon state to file.
func (d *Daemon) writeState(state *DaemonState) error {
	if err := os.MkdirAll(filepath.Dir(d.statePath), 0755); err != nil {
		return err
	}

	data, err := json.Marshal(state)
	if err != nil {
		return err
	}

	return os.WriteFile(d.statePath, data, 0644)
}

// readState reads daemon state from file.
func (d *Daemon) readState() (*DaemonState, error) {
	data, err := os.ReadFile(d.statePath)
	if err != nil {
		return nil, err
	}

	var state DaemonState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}

	return &state, nil
}

// removeState removes the state file.
func (d *Daemon) removeState() {
	if err := os.Remove(d.statePath); err != nil && !os.IsNotExist(err) {
		logging.Warn("failed to remove daemon state file", logging.KeyError, err, "path", d.statePath)
	}
}

// GetLogPath returns the path to the daemon log file.
func GetLogPath() string {
	return filepath.Join(xdg.StateHome, AppName, "daemon.log")
}

// formatUptime formats a duration as uptime.
func formatUptime(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		hours := int(d.Hours())
		minutes := int(d.Minutes()) % 60
		if minutes > 0 {
			return fmt.Sprintf("%dh %dm", hours, minutes)
		}
		return fmt.Sprintf("%dh", hours)
	}

	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	if hours > 0 {
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	return fmt.Sprintf("%dd", days)
}
