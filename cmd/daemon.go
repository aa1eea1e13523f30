package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/renalog/renalog/internal/config"
	"github.com/renalog/renalog/internal/daemon"
	apperrors "github.com/renalog/renalog/internal/errors"
	"github.com/renalog/renalog/internal/logging"
	"github.com/renalog/renalog/internal/output"
	"github.com/renalog/renalog/internal/storage"
)

// Daemon command flags.
var (
	daemonRunFlagLogFile   string
	daemonRunFlagListen    string
	daemonLogsFlagTail     int
	daemonLogsFlagFollow   bool
	daemonInstallFlagForce bool
)

// daemonCmd represents the daemon command. None of its subcommands open the
// database for writing: the running daemon reads a read-only snapshot once
// per check, so the CLI keeps working next to it.
var daemonCmd = &cobra.Command{
	Use:         "daemon [command]",
	Aliases:     []string{"bg", "service"},
	Short:       "Run and manage the reminder daemon",
	Annotations: noDB(),
	Long: `The reminder daemon checks the clock every few seconds and notifies you
when a medication's reminder time arrives and it has not been taken today.

Examples:
  renalog daemon run
  renalog daemon status
  renalog daemon stop
  renalog daemon install`,
	RunE: runDaemonStatus,
}

// daemonRunCmd runs the daemon in the foreground.
var daemonRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the reminder daemon in the foreground",
	Long: `Run the reminder daemon until interrupted. Reminders are printed to the
terminal and posted to the configured webhook once notifications are granted.

When a listen address is configured, /healthz and /metrics are served there.

Examples:
  renalog daemon run
  renalog daemon run --listen 127.0.0.1:9464
  renalog daemon run --log-file ~/.local/state/renalog/daemon.log`,
	Args: cobra.NoArgs,
	RunE: runDaemonRun,
}

// daemonStopCmd stops the daemon.
var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	Args:  cobra.NoArgs,
	RunE:  runDaemonStop,
}

// daemonStatusCmd shows daemon status.
var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	Args:  cobra.NoArgs,
	RunE:  runDaemonStatus,
}

// daemonLogsCmd shows daemon logs.
var daemonLogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View daemon logs",
	Long: `View the daemon log file written by the installed service.

Examples:
  renalog daemon logs
  renalog daemon logs --tail 50
  renalog daemon logs --follow`,
	Args: cobra.NoArgs,
	RunE: runDaemonLogs,
}

// daemonInstallCmd installs the daemon as a system service.
var daemonInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the daemon as a user service",
	Long: `Install the reminder daemon as a service that starts automatically on login.

On macOS, this creates a launchd agent in ~/Library/LaunchAgents.
On Linux, this creates a systemd user service in ~/.config/systemd/user.

Examples:
  renalog daemon install
  renalog daemon install --force   # Reinstall if already installed`,
	Args: cobra.NoArgs,
	RunE: runDaemonInstall,
}

// daemonUninstallCmd uninstalls the daemon system service.
var daemonUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the daemon user service",
	Args:  cobra.NoArgs,
	RunE:  runDaemonUninstall,
}

func init() {
	daemonRunCmd.Flags().StringVar(&daemonRunFlagLogFile, "log-file", "",
		"Write logs to this file instead of stderr (rotated at 5 MB)")
	daemonRunCmd.Flags().StringVar(&daemonRunFlagListen, "listen", "",
		"Address for /healthz and /metrics (overrides daemon.listen_addr)")

	daemonLogsCmd.Flags().IntVarP(&daemonLogsFlagTail, "tail", "n", 20,
		"Number of lines to show")
	daemonLogsCmd.Flags().BoolVar(&daemonLogsFlagFollow, "follow", false,
		"Follow log output (like tail -f)")

	daemonInstallCmd.Flags().BoolVar(&daemonInstallFlagForce, "force", false,
		"Force reinstall if already installed")

	daemonCmd.AddCommand(daemonRunCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	daemonCmd.AddCommand(daemonStatusCmd)
	daemonCmd.AddCommand(daemonLogsCmd)
	daemonCmd.AddCommand(daemonInstallCmd)
	daemonCmd.AddCommand(daemonUninstallCmd)

	rootCmd.AddCommand(daemonCmd)
}

// daemonFormatter returns a formatter for daemon commands, which run
// without a runtime context.
func daemonFormatter() *output.Formatter {
	f := output.NewFormatter()
	f.Format = parseFormat(flagFormat)
	f.ColorMode = parseColorMode(flagColor)
	return f
}

// daemonDBPath resolves the database the daemon reads from.
func daemonDBPath(cfg *config.Config) string {
	if cfg.Database != "" {
		return cfg.Database
	}
	return storage.DefaultPath()
}

// runDaemonRun handles the daemon run command.
func runDaemonRun(cmd *cobra.Command, args []string) error {
	cfg := appConfig
	if daemonRunFlagListen != "" {
		cfg.Daemon.ListenAddr = daemonRunFlagListen
	}

	if daemonRunFlagLogFile != "" {
		logFile, err := daemon.OpenLogFile(daemonRunFlagLogFile, daemon.DefaultMaxLogSize)
		if err != nil {
			return err
		}
		defer logFile.Close()

		lc := logging.DefaultConfig()
		if flagDebug {
			lc = logging.DebugConfig()
		} else {
			lc.Level = logging.ParseLevel(cfg.Log.Level)
			lc.JSON = cfg.Log.JSON
		}
		lc.Output = logFile
		logging.Init(lc)
	}

	f := daemonFormatter()
	d := daemon.NewDaemon(daemon.Options{
		Config:  cfg,
		DBPath:  daemonDBPath(cfg),
		Out:     os.Stdout,
		Color:   f.IsColorEnabled(),
		Version: Version,
	})

	if f.Format != output.FormatJSON {
		f.Println("Starting renalog daemon (Ctrl+C to stop)...")
	}

	err := d.Run(cmd.Context())
	switch {
	case errors.Is(err, daemon.ErrAlreadyRunning):
		status := d.GetStatus()
		return apperrors.NewUserError(fmt.Sprintf("Daemon is already running (PID: %d)", status.PID),
			"Stop it with 'renalog daemon stop'").WithCause(err)
	case errors.Is(err, daemon.ErrNeedsDiskDB):
		return apperrors.NewUserError("The daemon needs an on-disk database",
			"Unset RENALOG_DATABASE or point it at a directory").WithCause(err)
	}
	return err
}

// runDaemonStop handles the daemon stop command.
func runDaemonStop(cmd *cobra.Command, args []string) error {
	f := daemonFormatter()
	d := daemon.NewDaemon(daemon.Options{Config: appConfig})

	if !d.IsRunning() {
		if f.Format == output.FormatJSON {
			return f.PrintJSON(map[string]interface{}{"status": "not_running"})
		}
		f.Println("Daemon is not running")
		return nil
	}

	pid := d.GetStatus().PID
	if err := d.Stop(); err != nil {
		return err
	}

	if f.Format == output.FormatJSON {
		return f.PrintJSON(map[string]interface{}{"status": "stopped", "pid": pid})
	}
	f.Printf("Daemon stopped (was PID: %d)\n", pid)
	return nil
}

// runDaemonStatus handles the daemon status command.
func runDaemonStatus(cmd *cobra.Command, args []string) error {
	f := daemonFormatter()
	d := daemon.NewDaemon(daemon.Options{Config: appConfig})
	status := d.GetStatus()

	if f.Format == output.FormatJSON {
		return f.PrintJSON(status)
	}

	f.Println("renalog daemon")
	f.Println("")
	if status.Running {
		f.Printf("  Status:    running\n")
		f.Printf("  PID:       %d\n", status.PID)
		if status.Database != "" {
			f.Printf("  Database:  %s\n", status.Database)
		}
		if status.Uptime != "" {
			f.Printf("  Uptime:    %s\n", status.Uptime)
		}
		if status.Listen != "" {
			f.Printf("  Health:    http://%s/healthz\n", status.Listen)
		}
	} else {
		f.Printf("  Status:    stopped\n")
		f.Println("")
		f.Println("Start with: renalog daemon run")
	}
	return nil
}

// runDaemonLogs handles the daemon logs command.
func runDaemonLogs(cmd *cobra.Command, args []string) error {
	logPath := daemon.GetLogPath()

	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		fmt.Println("No log file found.")
		fmt.Printf("Log path: %s\n", logPath)
		return nil
	}

	lines, err := tailFile(logPath, daemonLogsFlagTail)
	if err != nil {
		return err
	}
	for _, line := range lines {
		fmt.Println(line)
	}

	if daemonLogsFlagFollow {
		return followLogs(cmd, logPath, os.Stdout)
	}
	return nil
}

// tailFile reads the last n lines from a file.
func tailFile(path string, n int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if len(lines) > n {
			lines = lines[1:]
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return lines, nil
}

// followLogs prints lines appended to path until the command is cancelled.
func followLogs(cmd *cobra.Command, path string, w io.Writer) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		return err
	}

	reader := bufio.NewReader(file)
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		for {
			line, err := reader.ReadString('\n')
			if len(line) > 0 {
				fmt.Fprint(w, line)
			}
			if err == io.EOF {
				break
			}
			if err != nil {
				return err
			}
		}

		select {
		case <-cmd.Context().Done():
			return nil
		case <-ticker.C:
		}
	}
}

// runDaemonInstall handles the daemon install command.
func runDaemonInstall(cmd *cobra.Command, args []string) error {
	f := daemonFormatter()
	mgr, err := daemon.NewServiceManager()
	if err != nil {
		return err
	}
	mgr.SetDebug(flagDebug)

	if mgr.IsInstalled() && !daemonInstallFlagForce {
		if f.Format == output.FormatJSON {
			return f.PrintJSON(map[string]interface{}{"status": "already_installed"})
		}
		f.Println("Service is already installed.")
		f.Println("Use --force to reinstall.")
		return nil
	}

	if mgr.IsInstalled() && daemonInstallFlagForce {
		if err := mgr.Uninstall(); err != nil {
			return fmt.Errorf("failed to remove existing service: %w", err)
		}
	}

	if err := mgr.Install(); err != nil {
		return err
	}

	if f.Format == output.FormatJSON {
		return f.PrintJSON(map[string]interface{}{
			"status":  "installed",
			"message": "Service will start automatically on login",
		})
	}

	f.Println("✓ Service installed successfully")
	f.Println("")
	f.Println("The daemon will now start automatically when you log in.")
	f.Println("Logs: " + daemon.GetLogPath())
	f.Println("To remove: renalog daemon uninstall")
	return nil
}

// runDaemonUninstall handles the daemon uninstall command.
func runDaemonUninstall(cmd *cobra.Command, args []string) error {
	f := daemonFormatter()
	mgr, err := daemon.NewServiceManager()
	if err != nil {
		return err
	}
	mgr.SetDebug(flagDebug)

	if !mgr.IsInstalled() {
		if f.Format == output.FormatJSON {
			return f.PrintJSON(map[string]interface{}{"status": "not_installed"})
		}
		f.Println("Service is not installed.")
		return nil
	}

	d := daemon.NewDaemon(daemon.Options{Config: appConfig})
	if d.IsRunning() {
		if err := d.Stop(); err != nil {
			// Continue anyway - we want to uninstall
			logging.Warn("failed to stop daemon", logging.KeyError, err)
		}
	}

	if err := mgr.Uninstall(); err != nil {
		return err
	}

	if f.Format == output.FormatJSON {
		return f.PrintJSON(map[string]interface{}{"status": "uninstalled"})
	}

	f.Println("✓ Service uninstalled successfully")
	f.Println("")
	f.Println("To reinstall: renalog daemon install")
	return nil
}
