package cmd

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/renalog/renalog/internal/chart"
	apperrors "github.com/renalog/renalog/internal/errors"
	"github.com/renalog/renalog/internal/runtime"
)

var chartFlagOutput string

// chartCmd renders the trend charts.
var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Render weight, blood-pressure and fluid trends as an HTML page",
	Long: `Write an HTML page with charts of weight against dry weight, blood
pressure against the limits for your age, and fluid removed per session.

Examples:
  renalog chart
  renalog chart -o ~/trends.html`,
	Args: cobra.NoArgs,
	RunE: runChart,
}

func init() {
	chartCmd.Flags().StringVarP(&chartFlagOutput, "output", "o", "renalog-trends.html", "Output HTML file")
	rootCmd.AddCommand(chartCmd)
}

func runChart(cmd *cobra.Command, args []string) error {
	st := ctx.App.State()

	page, err := chart.Build(st.Records, st.Profile.Age)
	if errors.Is(err, chart.ErrNoRecords) {
		return apperrors.NewUserError("No records to chart", "Add a session with 'renalog record add' first")
	}
	if err != nil {
		return err
	}

	f, err := os.Create(chartFlagOutput)
	if err != nil {
		return runtime.WrapDiskFullError(err, "create chart", chartFlagOutput)
	}
	defer f.Close()

	if err := page.Render(f); err != nil {
		return runtime.WrapDiskFullError(err, "write chart", chartFlagOutput)
	}

	path, _ := filepath.Abs(chartFlagOutput)
	if ctx.IsJSON() {
		return ctx.Formatter.PrintJSON(map[string]interface{}{
			"status":  "ok",
			"path":    path,
			"records": len(st.Records),
		})
	}
	ctx.CLIFormatter().Success("Chart written to " + path)
	return nil
}
