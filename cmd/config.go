package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/renalog/renalog/internal/config"
	"github.com/renalog/renalog/internal/logging"
	"github.com/renalog/renalog/internal/output"
	"github.com/renalog/renalog/internal/storage"
)

// configCmd represents the config command.
var configCmd = &cobra.Command{
	Use:         "config",
	Aliases:     []string{"cfg", "settings"},
	Short:       "Show application configuration",
	Annotations: noDB(),
	Long: `Show the effective configuration. Values come from defaults, the config
file and RENALOG_* environment variables, in that order.

Examples:
  renalog config show
  renalog config path
  RENALOG_SCHEDULER_POLL_INTERVAL=10s renalog config show`,
	RunE: runConfigShow,
}

// configShowCmd shows the effective configuration.
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration with secrets masked",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

// configPathCmd shows where configuration and data live.
var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show config and data locations",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// maskedConfig returns a copy of cfg that is safe to print.
func maskedConfig(cfg *config.Config) config.Config {
	out := *cfg
	if out.AI.APIKey != "" {
		out.AI.APIKey = logging.MaskValue(out.AI.APIKey)
	}
	if out.Notify.WebhookURL != "" {
		out.Notify.WebhookURL = logging.MaskURL(out.Notify.WebhookURL)
	}
	return out
}

// runConfigShow handles the config show command.
func runConfigShow(cmd *cobra.Command, args []string) error {
	f := daemonFormatter()
	cfg := maskedConfig(appConfig)

	if cfg.Database == "" {
		cfg.Database = storage.DefaultPath()
	}

	if f.Format == output.FormatJSON {
		return f.PrintJSON(cfg)
	}

	f.Println("Configuration:")
	f.Println("")
	f.Printf("  database:                   %s\n", cfg.Database)
	f.Printf("  log.level:                  %s\n", cfg.Log.Level)
	f.Printf("  log.json:                   %t\n", cfg.Log.JSON)
	f.Printf("  ai.api_key:                 %s\n", orNone(cfg.AI.APIKey))
	f.Printf("  ai.model:                   %s\n", cfg.AI.Model)
	f.Printf("  ai.endpoint:                %s\n", cfg.AI.Endpoint)
	f.Printf("  ai.api_version:             %s\n", cfg.AI.APIVersion)
	f.Printf("  ai.timeout:                 %s\n", cfg.AI.Timeout)
	f.Printf("  ai.requests_per_minute:     %d\n", cfg.AI.RequestsPerMinute)
	f.Printf("  http.timeout:               %s\n", cfg.HTTP.Timeout)
	f.Printf("  http.max_retries:           %d\n", cfg.HTTP.MaxRetries)
	f.Printf("  scheduler.poll_interval:    %s\n", cfg.Scheduler.PollInterval)
	f.Printf("  notify.terminal:            %t\n", cfg.Notify.Terminal)
	f.Printf("  notify.bell:                %t\n", cfg.Notify.Bell)
	f.Printf("  notify.webhook_url:         %s\n", orNone(cfg.Notify.WebhookURL))
	f.Printf("  notify.webhook_type:        %s\n", cfg.Notify.WebhookType)
	f.Printf("  notify.webhook_template:    %s\n", orNone(cfg.Notify.WebhookTemplate))
	f.Printf("  daemon.listen_addr:         %s\n", orNone(cfg.Daemon.ListenAddr))
	return nil
}

// runConfigPath handles the config path command.
func runConfigPath(cmd *cobra.Command, args []string) error {
	f := daemonFormatter()
	configFile := flagConfig
	if configFile == "" {
		configFile = filepath.Join(config.DefaultDir(), "config.yaml")
	}
	database := appConfig.Database
	if database == "" {
		database = storage.DefaultPath()
	}

	if f.Format == output.FormatJSON {
		return f.PrintJSON(map[string]string{
			"config":   configFile,
			"database": database,
		})
	}
	f.Printf("config:   %s\n", configFile)
	f.Printf("database: %s\n", database)
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
