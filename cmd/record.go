package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/renalog/renalog/internal/app"
	"github.com/renalog/renalog/internal/model"
	"github.com/renalog/renalog/internal/runtime"
)

// Record command flags.
var (
	recordFlagDate      string
	recordFlagWeight    string
	recordFlagDryWeight string
	recordFlagFluid     string
	recordFlagBP        string
	recordFlagNotes     string
	recordFlagVoice     string
	recordListFlagLimit int
)

// recordCmd represents the record command.
var recordCmd = &cobra.Command{
	Use:     "record",
	Aliases: []string{"rec", "r"},
	Short:   "Record and review dialysis sessions",
	RunE:    runRecordList,
}

// recordAddCmd adds a session record.
var recordAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a dialysis session",
	Long: `Record weight, dry weight, fluid removed and blood pressure for a session.
The record is checked right away: fluid removal above 5% of dry weight and
blood pressure outside the limits for your age are flagged.

Dates accept natural language ("yesterday", "last monday") or YYYY-MM-DD.

Examples:
  renalog record add --weight 72.4 --dry-weight 70 --fluid 2.5 --bp 128/82
  renalog record add -w 73 -d 70 --date yesterday --notes "cramps at the end"
  renalog record add -w 73 -d 70 --voice note.m4a`,
	Args: cobra.NoArgs,
	RunE: runRecordAdd,
}

// recordListCmd lists session records.
var recordListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List recorded sessions",
	Args:    cobra.NoArgs,
	RunE:    runRecordList,
}

func init() {
	recordAddCmd.Flags().StringVar(&recordFlagDate, "date", "today", "Session date")
	recordAddCmd.Flags().StringVarP(&recordFlagWeight, "weight", "w", "", "Weight after the session in kg (required)")
	recordAddCmd.Flags().StringVarP(&recordFlagDryWeight, "dry-weight", "d", "", "Dry weight in kg (required)")
	recordAddCmd.Flags().StringVar(&recordFlagFluid, "fluid", "", "Fluid removed in liters")
	recordAddCmd.Flags().StringVar(&recordFlagBP, "bp", "", "Blood pressure as SYS/DIA, e.g. 128/82")
	recordAddCmd.Flags().StringVarP(&recordFlagNotes, "notes", "n", "", "Free-text notes")
	recordAddCmd.Flags().StringVar(&recordFlagVoice, "voice", "", "Audio file to transcribe into the notes")
	_ = recordAddCmd.MarkFlagRequired("weight")
	_ = recordAddCmd.MarkFlagRequired("dry-weight")
	_ = recordAddCmd.RegisterFlagCompletionFunc("date", completeDates)

	recordListCmd.Flags().IntVarP(&recordListFlagLimit, "limit", "l", 0, "Show only the last N records")

	recordCmd.AddCommand(recordAddCmd)
	recordCmd.AddCommand(recordListCmd)
	rootCmd.AddCommand(recordCmd)
}

func runRecordAdd(cmd *cobra.Command, args []string) error {
	notes := recordFlagNotes
	if recordFlagVoice != "" {
		text, err := transcribeFile(cmd, recordFlagVoice)
		if err != nil {
			return err
		}
		if text == "" && !ctx.IsJSON() {
			ctx.CLIFormatter().Warning("Voice note could not be transcribed; saving without it.")
		}
		notes = strings.TrimSpace(strings.Join([]string{notes, text}, " "))
	}

	record, assessment, err := ctx.App.AddRecord(app.RecordInput{
		Date:          recordFlagDate,
		Weight:        recordFlagWeight,
		DryWeight:     recordFlagDryWeight,
		FluidRemoval:  recordFlagFluid,
		BloodPressure: recordFlagBP,
		Notes:         notes,
	})
	if err != nil {
		return runtime.WrapDiskFullError(err, "add record", ctx.DB.Path())
	}

	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintRecordAdded(record, assessment)
	}
	ctx.CLIFormatter().PrintRecordAdded(record, assessment)
	return nil
}

func runRecordList(cmd *cobra.Command, args []string) error {
	st := ctx.App.State()
	records := lastRecords(st.Records, recordListFlagLimit)

	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintRecords(records, st.Skipped, ctx.App.Assess)
	}

	cli := ctx.CLIFormatter()
	if len(records) == 0 {
		cli.Muted("No records yet.")
		cli.Muted("Use 'renalog record add --weight 72.4 --dry-weight 70' to add one.")
		return nil
	}
	cli.PrintRecords(records, ctx.App.Assess)
	if len(st.Skipped) > 0 {
		cli.Println("")
		cli.Warning("Some stored entries could not be read and were skipped.")
	}
	return nil
}

// lastRecords returns the last n records, or all of them when n <= 0.
func lastRecords(records []*model.HealthRecord, n int) []*model.HealthRecord {
	if n <= 0 || n >= len(records) {
		return records
	}
	return records[len(records)-n:]
}
