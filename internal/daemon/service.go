package daemon

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"text/template"

	"github.com/adrg/xdg"
)

const (
	launchdLabel = "io.renalog.daemon"
	systemdUnit  = "renalog.service"
)

// ServiceManager installs the daemon as a per-user system service so that
// reminders keep firing after the terminal is closed.
type ServiceManager struct {
	executablePath string
	debug          bool
}

// NewServiceManager creates a new service manager.
func NewServiceManager() (*ServiceManager, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %w", err)
	}

	return &ServiceManager{
		executablePath: execPath,
	}, nil
}

// SetDebug enables debug output.
func (m *ServiceManager) SetDebug(debug bool) {
	m.debug = debug
}

// Install installs the daemon as a system service.
func (m *ServiceManager) Install() error {
	switch runtime.GOOS {
	case "darwin":
		return m.installLaunchd()
	case "linux":
		return m.installSystemd()
	default:
		return fmt.Errorf("service installation is not supported on %s", runtime.GOOS)
	}
}

// Uninstall removes the daemon from system services.
func (m *ServiceManager) Uninstall() error {
	switch runtime.GOOS {
	case "darwin":
		return m.uninstallLaunchd()
	case "linux":
		return m.uninstallSystemd()
	default:
		return fmt.Errorf("service removal is not supported on %s", runtime.GOOS)
	}
}

// IsInstalled checks if the service is installed.
func (m *ServiceManager) IsInstalled() bool {
	var path string
	switch runtime.GOOS {
	case "darwin":
		path = m.getLaunchdPath()
	case "linux":
		path = m.getSystemdPath()
	default:
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// unitData fills both service templates.
type unitData struct {
	Label          string
	ExecutablePath string
	LogPath        string
	HomeDirectory  string
	DataHome       string
	ConfigHome     string
	StateHome      string
}

func (m *ServiceManager) unitData() unitData {
	return unitData{
		Label:          launchdLabel,
		ExecutablePath: m.executablePath,
		LogPath:        GetLogPath(),
		HomeDirectory:  xdg.Home,
		DataHome:       xdg.DataHome,
		ConfigHome:     xdg.ConfigHome,
		StateHome:      xdg.StateHome,
	}
}

// macOS launchd support

var launchdTemplate = template.Must(template.New("plist").Parse(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
    <key>Label</key>
    <string>{{.Label}}</string>
    <key>ProgramArguments</key>
    <array>
        <string>{{.ExecutablePath}}</string>
        <string>daemon</string>
        <string>run</string>
        <string>--log-file</string>
        <string>{{.LogPath}}</string>
    </array>
    <key>RunAtLoad</key>
    <true/>
    <key>KeepAlive</key>
    <true/>
    <key>StandardOutPath</key>
    <string>{{.LogPath}}</string>
    <key>StandardErrorPath</key>
    <string>{{.LogPath}}</string>
</dict>
</plist>
`))

// RenderLaunchd writes the launchd agent definition.
func (m *ServiceManager) RenderLaunchd(w io.Writer) error {
	return launchdTemplate.Execute(w, m.unitData())
}

func (m *ServiceManager) getLaunchdPath() string {
	return filepath.Join(xdg.Home, "Library", "LaunchAgents", launchdLabel+".plist")
}

func (m *ServiceManager) installLaunchd() error {
	plistPath := m.getLaunchdPath()
	if err := m.writeFile(plistPath, m.RenderLaunchd); err != nil {
		return err
	}

	cmd := exec.Command("launchctl", "load", plistPath)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to load service: %w: %s", err, string(output))
	}

	m.debugf("Installed launchd agent at %s", plistPath)
	return nil
}

func (m *ServiceManager) uninstallLaunchd() error {
	plistPath := m.getLaunchdPath()

	// Not loaded is fine
	exec.Command("launchctl", "unload", plistPath).Run()

	if err := os.Remove(plistPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove plist file: %w", err)
	}

	m.debugf("Uninstalled launchd agent from %s", plistPath)
	return nil
}

// Linux systemd support

var systemdTemplate = template.Must(template.New("unit").Parse(`[Unit]
Description=renalog medication reminders

[Service]
Type=simple
ExecStart={{.ExecutablePath}} daemon run --log-file {{.LogPath}}
Restart=on-failure
RestartSec=5
Environment="HOME={{.HomeDirectory}}"
Environment="XDG_DATA_HOME={{.DataHome}}"
Environment="XDG_CONFIG_HOME={{.ConfigHome}}"
Environment="XDG_STATE_HOME={{.StateHome}}"

[Install]
WantedBy=default.target
`))

// RenderSystemd writes the systemd user unit.
func (m *ServiceManager) RenderSystemd(w io.Writer) error {
	return systemdTemplate.Execute(w, m.unitData())
}

func (m *ServiceManager) getSystemdPath() string {
	return filepath.Join(xdg.ConfigHome, "systemd", "user", systemdUnit)
}

func (m *ServiceManager) installSystemd() error {
	unitPath := m.getSystemdPath()
	if err := m.writeFile(unitPath, m.RenderSystemd); err != nil {
		return err
	}

	for _, args := range [][]string{
		{"--user", "daemon-reload"},
		{"--user", "enable", "--now", systemdUnit},
	} {
		cmd := exec.Command("systemctl", args...)
		if output, err := cmd.CombinedOutput(); err != nil {
			return fmt.Errorf("systemctl %s: %w: %s", args[1], err, string(output))
		}
	}

	m.debugf("Installed systemd user service at %s", unitPath)
	return nil
}

func (m *ServiceManager) uninstallSystemd() error {
	unitPath := m.getSystemdPath()

	// Not running or not enabled is fine
	exec.Command("systemctl", "--user", "disable", "--now", systemdUnit).Run()

	if err := os.Remove(unitPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove unit file: %w", err)
	}

	exec.Command("systemctl", "--user", "daemon-reload").Run()

	m.debugf("Uninstalled systemd user service from %s", unitPath)
	return nil
}

func (m *ServiceManager) writeFile(path string, render func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	if err := render(file); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func (m *ServiceManager) debugf(format string, args ...any) {
	if m.debug {
		fmt.Printf("[DEBUG] "+format+"\n", args...)
	}
}
