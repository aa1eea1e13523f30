// Package config loads renalog configuration from defaults, an optional YAML
// file and RENALOG_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// AppName is used for the config directory and the environment prefix.
const AppName = "renalog"

// Config holds all runtime configuration values.
type Config struct {
	// Database is the badger directory. ":memory:" selects an in-memory store.
	// Empty uses the XDG data directory.
	Database string `mapstructure:"database"`

	Log       LogConfig       `mapstructure:"log"`
	AI        AIConfig        `mapstructure:"ai"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Daemon    DaemonConfig    `mapstructure:"daemon"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// AIConfig holds generative-AI gateway settings.
type AIConfig struct {
	// APIKey authenticates against the Gemini API. Empty disables AI calls.
	APIKey string `mapstructure:"api_key"`

	// Model is the model used for both summaries and transcription.
	// Default: gemini-2.0-flash
	Model string `mapstructure:"model"`

	// Endpoint is the API base URL.
	// Default: https://generativelanguage.googleapis.com/
	Endpoint string `mapstructure:"endpoint"`

	// APIVersion is the API version path segment.
	// Default: v1beta
	APIVersion string `mapstructure:"api_version"`

	// Timeout bounds a single AI request.
	// Default: 60s
	Timeout time.Duration `mapstructure:"timeout"`

	// RequestsPerMinute limits outgoing AI requests.
	// Default: 10
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
}

// HTTPConfig holds webhook HTTP client configuration.
type HTTPConfig struct {
	// Timeout is the default HTTP request timeout.
	// Default: 10s
	Timeout time.Duration `mapstructure:"timeout"`

	// MaxRetries is the maximum number of retry attempts.
	// Default: 2
	MaxRetries int `mapstructure:"max_retries"`
}

// SchedulerConfig holds reminder scheduler configuration.
type SchedulerConfig struct {
	// PollInterval is how often the wall clock is checked. It must stay
	// below one minute so that no reminder minute is skipped.
	// Default: 5s
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// NotifyConfig selects where reminder notifications are delivered.
type NotifyConfig struct {
	// Terminal writes reminders to the daemon's standard output.
	Terminal bool `mapstructure:"terminal"`

	// Bell rings the terminal bell with each terminal reminder.
	Bell bool `mapstructure:"bell"`

	// WebhookURL receives reminders as JSON when set.
	WebhookURL string `mapstructure:"webhook_url"`

	// WebhookType selects the payload format: generic, slack, discord or teams.
	WebhookType string `mapstructure:"webhook_type"`

	// WebhookTemplate is an optional Go text/template for generic webhooks.
	WebhookTemplate string `mapstructure:"webhook_template"`
}

// DaemonConfig holds daemon-related configuration.
type DaemonConfig struct {
	// ListenAddr serves /healthz and /metrics. Empty disables the listener.
	// Default: 127.0.0.1:9464
	ListenAddr string `mapstructure:"listen_addr"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level: "warn",
		},
		AI: AIConfig{
			Model:             "gemini-2.0-flash",
			Endpoint:          "https://generativelanguage.googleapis.com/",
			APIVersion:        "v1beta",
			Timeout:           60 * time.Second,
			RequestsPerMinute: 10,
		},
		HTTP: HTTPConfig{
			Timeout:    10 * time.Second,
			MaxRetries: 2,
		},
		Scheduler: SchedulerConfig{
			PollInterval: 5 * time.Second,
		},
		Notify: NotifyConfig{
			Terminal:    true,
			Bell:        true,
			WebhookType: "generic",
		},
		Daemon: DaemonConfig{
			ListenAddr: "127.0.0.1:9464",
		},
	}
}

// DefaultDir returns the configuration directory following the XDG spec.
func DefaultDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Options controls where configuration is read from.
type Options struct {
	// File is an explicit config file. It must exist when set.
	File string
	// Dir is searched for config.yaml when File is empty. Defaults to DefaultDir.
	Dir string
}

// Load reads configuration. A missing default config file is not an error.
func Load(opts Options) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		dir := opts.Dir
		if dir == "" {
			dir = DefaultDir()
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.File != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.AI.APIKey == "" {
		cfg.AI.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would break the scheduler or the AI client.
func (c *Config) Validate() error {
	if c.Scheduler.PollInterval <= 0 || c.Scheduler.PollInterval >= time.Minute {
		return fmt.Errorf("scheduler.poll_interval must be between 0 and 1m, got %s", c.Scheduler.PollInterval)
	}
	if c.AI.RequestsPerMinute <= 0 {
		return fmt.Errorf("ai.requests_per_minute must be positive, got %d", c.AI.RequestsPerMinute)
	}
	switch c.Notify.WebhookType {
	case "generic", "slack", "discord", "teams":
	default:
		return fmt.Errorf("notify.webhook_type must be generic, slack, discord or teams, got %q", c.Notify.WebhookType)
	}
	return nil
}

// HasAI reports whether AI requests can be made.
func (c *Config) HasAI() bool {
	return c.AI.APIKey != ""
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("database", d.Database)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.json", d.Log.JSON)
	v.SetDefault("ai.api_key", d.AI.APIKey)
	v.SetDefault("ai.model", d.AI.Model)
	v.SetDefault("ai.endpoint", d.AI.Endpoint)
	v.SetDefault("ai.api_version", d.AI.APIVersion)
	v.SetDefault("ai.timeout", d.AI.Timeout)
	v.SetDefault("ai.requests_per_minute", d.AI.RequestsPerMinute)
	v.SetDefault("http.timeout", d.HTTP.Timeout)
	v.SetDefault("http.max_retries", d.HTTP.MaxRetries)
	v.SetDefault("scheduler.poll_interval", d.Scheduler.PollInterval)
	v.SetDefault("notify.terminal", d.Notify.Terminal)
	v.SetDefault("notify.bell", d.Notify.Bell)
	v.SetDefault("notify.webhook_url", d.Notify.WebhookURL)
	v.SetDefault("notify.webhook_type", d.Notify.WebhookType)
	v.SetDefault("notify.webhook_template", d.Notify.WebhookTemplate)
	v.SetDefault("daemon.listen_addr", d.Daemon.ListenAddr)
}
