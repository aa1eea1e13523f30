package cmd

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/renalog/renalog/internal/model"
	"github.com/renalog/renalog/internal/runtime"
	"github.com/renalog/renalog/internal/storage"
)

// Export command flags.
var (
	exportFlagFormat string
	exportFlagOutput string
)

// exportCmd represents the export command.
var exportCmd = &cobra.Command{
	Use:     "export",
	Aliases: []string{"dump", "backup"},
	Short:   "Export your data",
	Long: `Export everything as JSON (records, medications, profile and the
notification permission), or just the session records as CSV.

Examples:
  renalog export
  renalog export -o backup.json
  renalog export --as csv -o sessions.csv`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFlagFormat, "as", "json", "Export format: json, csv")
	exportCmd.Flags().StringVarP(&exportFlagOutput, "output", "o", "", "Output file (stdout if omitted)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	export, err := storage.ExportAll(ctx.DB)
	if err != nil {
		return err
	}

	// Determine output destination
	var writer io.Writer = os.Stdout
	if exportFlagOutput != "" {
		f, err := os.Create(exportFlagOutput)
		if err != nil {
			return runtime.WrapDiskFullError(err, "create export", exportFlagOutput)
		}
		defer f.Close()
		writer = f
	}

	switch exportFlagFormat {
	case "csv":
		err = exportCSV(writer, export.Records)
	default:
		err = export.WriteJSON(writer)
	}
	if err != nil {
		return runtime.WrapDiskFullError(err, "write export", exportFlagOutput)
	}

	// Print summary if writing to file
	if exportFlagOutput != "" && !ctx.IsJSON() {
		cli := ctx.CLIFormatter()
		cli.Success("Export written: " + exportFlagOutput)
		cli.Printf("  Records: %d\n", len(export.Records))
		cli.Printf("  Medications: %d\n", len(export.Medications))
		if len(export.Skipped) > 0 {
			cli.Warning(strconv.Itoa(len(export.Skipped)) + " unreadable entries were skipped")
		}
	}
	return nil
}

func exportCSV(w io.Writer, records []*model.HealthRecord) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{
		"id", "date", "weight_kg", "dry_weight_kg", "fluid_removal_l", "systolic", "diastolic", "notes",
	}); err != nil {
		return err
	}

	for _, r := range records {
		fluid := ""
		if r.FluidRemoval != nil {
			fluid = strconv.FormatFloat(*r.FluidRemoval, 'f', -1, 64)
		}
		if err := writer.Write([]string{
			r.ID(),
			r.Date,
			strconv.FormatFloat(r.Weight, 'f', -1, 64),
			strconv.FormatFloat(r.DryWeight, 'f', -1, 64),
			fluid,
			optionalInt(r.Systolic),
			optionalInt(r.Diastolic),
			r.Notes,
		}); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func optionalInt(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
