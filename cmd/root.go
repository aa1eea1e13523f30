// Package cmd provides the CLI commands for renalog.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/renalog/renalog/internal/config"
	apperrors "github.com/renalog/renalog/internal/errors"
	"github.com/renalog/renalog/internal/logging"
	"github.com/renalog/renalog/internal/model"
	"github.com/renalog/renalog/internal/output"
	"github.com/renalog/renalog/internal/runtime"
)

// Version information (set at build time via ldflags).
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Global flags.
var (
	flagFormat string
	flagColor  string
	flagDebug  bool
	flagConfig string
)

// annotationNoDB marks commands that must not open the database. It is
// inherited by subcommands.
const annotationNoDB = "renalog/no-db"

// ctx is the shared runtime context. It is nil for commands marked with
// annotationNoDB.
var ctx *runtime.Context

// appConfig is the loaded configuration, available to every command.
var appConfig *config.Config

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "renalog",
	Short: "A health tracker for dialysis patients",
	Long: `renalog records dialysis sessions, checks them against clinical
thresholds, and reminds you to take your medications.

Examples:
  renalog record add --weight 72.4 --dry-weight 70 --fluid 2.5 --bp 128/82
  renalog med add Sevelamer --dosage "800 mg" --at 08:00
  renalog med take sev
  renalog profile set --name Ana --age 67 --start 2023-01-15
  renalog dashboard`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "completion" || cmd.Name() == "help" {
			return nil
		}

		cfg, err := config.Load(config.Options{File: flagConfig})
		if err != nil {
			return apperrors.NewUserError(err.Error(), "Check the config file and RENALOG_* environment variables")
		}
		appConfig = cfg
		initLogging(cfg)

		if !needsDatabase(cmd) {
			return nil
		}

		opts := runtime.DefaultOptions()
		opts.Config = cfg
		opts.Format = parseFormat(flagFormat)
		opts.ColorMode = parseColorMode(flagColor)
		opts.Debug = flagDebug

		ctx, err = runtime.New(opts)
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeContext()
	},
	RunE: runOverview,
}

// runOverview shows the latest record and today's medications.
func runOverview(cmd *cobra.Command, args []string) error {
	st := ctx.App.State()
	today := ctx.App.Today()

	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintMedications(st.Medications, today)
	}

	cli := ctx.CLIFormatter()
	if latest := ctx.App.LatestRecord(); latest != nil {
		cli.Title("Latest session")
		cli.PrintRecords([]*model.HealthRecord{latest}, ctx.App.Assess)
		cli.PrintAssessment(ctx.App.Assess(latest))
		cli.Println("")
	} else {
		cli.Muted("No records yet.")
		cli.Muted("Use 'renalog record add' after your next session.")
		cli.Println("")
	}

	cli.Title("Medications for " + today)
	cli.PrintMedications(st.Medications, today)
	return nil
}

// Execute runs the root command and prints any error in the selected
// output format.
func Execute() error {
	err := rootCmd.Execute()
	// RunE errors skip PersistentPostRunE
	if cerr := closeContext(); err == nil {
		err = cerr
	}
	if err != nil {
		printError(err)
	}
	return err
}

func closeContext() error {
	if ctx == nil {
		return nil
	}
	err := ctx.Close()
	ctx = nil
	return err
}

// ExitCode maps an error returned by Execute to a process exit status.
func ExitCode(err error) int {
	return runtime.ExitCode(err)
}

func printError(err error) {
	if flagFormat == "json" {
		f := output.NewFormatter()
		_ = output.NewJSONFormatter(f).PrintError("error", err.Error(), apperrors.GetSuggestion(err))
		return
	}
	fmt.Fprintln(os.Stderr, "Error: "+runtime.FormatError(err))
}

func initLogging(cfg *config.Config) {
	if flagDebug {
		logging.Init(logging.DebugConfig())
		return
	}
	lc := logging.DefaultConfig()
	lc.Level = logging.ParseLevel(cfg.Log.Level)
	lc.JSON = cfg.Log.JSON
	logging.Init(lc)
}

func needsDatabase(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[annotationNoDB] == "true" {
			return false
		}
	}
	return true
}

func noDB() map[string]string {
	return map[string]string{annotationNoDB: "true"}
}

func parseFormat(s string) output.Format {
	switch s {
	case "json":
		return output.FormatJSON
	case "plain":
		return output.FormatPlain
	default:
		return output.FormatCLI
	}
}

func parseColorMode(s string) output.ColorMode {
	switch s {
	case "always":
		return output.ColorAlways
	case "never":
		return output.ColorNever
	default:
		return output.ColorAuto
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&flagFormat, "format", "f", "cli",
		"Output format: cli, json, plain")
	rootCmd.PersistentFlags().StringVar(&flagColor, "color", "auto",
		"Color output: auto, always, never")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false,
		"Enable debug output")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "",
		"Config file (default $XDG_CONFIG_HOME/renalog/config.yaml)")

	rootCmd.AddCommand(versionCmd)
}

// versionCmd shows version information.
var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print version information",
	Annotations: noDB(),
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("renalog %s\n", Version)
		cmd.Printf("  commit: %s\n", Commit)
		cmd.Printf("  built: %s\n", BuildTime)
	},
}
