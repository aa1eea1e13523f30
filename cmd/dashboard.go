package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	apperrors "github.com/renalog/renalog/internal/errors"
	"github.com/renalog/renalog/internal/tui"
)

// dashboardCmd represents the dashboard command.
var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"dash", "tui"},
	Short:   "Open the interactive terminal dashboard",
	Long: `Open an interactive terminal dashboard.

The dashboard shows:
  - Your profile and time on dialysis
  - The latest session with any warnings
  - Today's medications

Reminders fire inside the dashboard while it is open.

Keyboard Controls:
  up/down - Select a medication
  space   - Toggle taken today
  s       - Generate an AI summary
  r       - Reload from disk
  q       - Quit dashboard

Examples:
  renalog dashboard
  renalog dash`,
	Args: cobra.NoArgs,
	RunE: runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return apperrors.NewUserError("The dashboard needs an interactive terminal",
			"Use 'renalog' or 'renalog med list' for non-interactive output")
	}

	return tui.Run(tui.DashboardConfig{
		App:            ctx.App,
		Config:         ctx.Config,
		SummaryTimeout: ctx.Config.AI.Timeout,
	})
}
