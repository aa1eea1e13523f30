package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/renalog/renalog/internal/app"
	"github.com/renalog/renalog/internal/model"
	"github.com/renalog/renalog/internal/runtime"
)

// Medication command flags.
var (
	medFlagDosage    string
	medFlagFrequency string
	medFlagAt        string
)

// medCmd represents the med command.
var medCmd = &cobra.Command{
	Use:     "med",
	Aliases: []string{"meds", "medication", "m"},
	Short:   "Manage medications and daily reminders",
	RunE:    runMedList,
}

// medAddCmd adds a medication.
var medAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add a medication",
	Long: `Add a medication with an optional daily reminder time.

Frequency is a free-text label; common ones are offered as completions:
  once daily, twice daily, three times daily, every dialysis session, as needed

Examples:
  renalog med add Sevelamer --dosage "800 mg" --frequency "three times daily"
  renalog med add Calcitriol --dosage "0.25 mcg" --at 20:30
  renalog med add "Vitamin D" --dosage "1000 IU" --at 8am`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMedAdd,
}

// medListCmd lists medications.
var medListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List medications with today's status",
	Args:    cobra.NoArgs,
	RunE:    runMedList,
}

// medTakeCmd toggles today's taken state.
var medTakeCmd = &cobra.Command{
	Use:   "take ID",
	Short: "Mark a medication as taken today (run again to undo)",
	Long: `Toggle whether a medication was taken today. ID may be any unique
prefix of the medication ID shown by 'renalog med list'.

Examples:
  renalog med take 3f2a`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeMedicationArgs,
	RunE:              runMedTake,
}

// medRemoveCmd removes a medication.
var medRemoveCmd = &cobra.Command{
	Use:               "remove ID",
	Aliases:           []string{"rm", "delete"},
	Short:             "Remove a medication",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeMedicationArgs,
	RunE:              runMedRemove,
}

func init() {
	medAddCmd.Flags().StringVar(&medFlagDosage, "dosage", "", "Dosage, e.g. \"800 mg\" (required)")
	medAddCmd.Flags().StringVar(&medFlagFrequency, "frequency", model.FrequencyPresets[0], "How often it is taken")
	medAddCmd.Flags().StringVar(&medFlagAt, "at", "", "Daily reminder time, e.g. 08:00 or 8:30pm")
	_ = medAddCmd.MarkFlagRequired("dosage")
	_ = medAddCmd.RegisterFlagCompletionFunc("frequency", completeFrequencies)

	medCmd.AddCommand(medAddCmd)
	medCmd.AddCommand(medListCmd)
	medCmd.AddCommand(medTakeCmd)
	medCmd.AddCommand(medRemoveCmd)
	rootCmd.AddCommand(medCmd)
}

func runMedAdd(cmd *cobra.Command, args []string) error {
	med, err := ctx.App.AddMedication(app.MedicationInput{
		Name:         strings.Join(args, " "),
		Dosage:       medFlagDosage,
		Frequency:    medFlagFrequency,
		ReminderTime: medFlagAt,
	})
	if err != nil {
		return runtime.WrapDiskFullError(err, "add medication", ctx.DB.Path())
	}

	today := ctx.App.Today()
	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintMedication(med, today)
	}

	cli := ctx.CLIFormatter()
	cli.Success("Added medication")
	cli.PrintMedication(med, today)
	if med.HasReminder() && ctx.App.State().Permission != model.PermissionGranted {
		cli.Println("")
		cli.Muted("Reminders are not enabled. Run 'renalog notify permission grant' to allow them.")
	}
	return nil
}

func runMedList(cmd *cobra.Command, args []string) error {
	meds, err := ctx.App.ListMedications()
	if err != nil {
		return err
	}
	today := ctx.App.Today()

	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintMedications(meds, today)
	}
	ctx.CLIFormatter().PrintMedications(meds, today)
	return nil
}

func runMedTake(cmd *cobra.Command, args []string) error {
	med, err := ctx.App.ToggleTaken(args[0])
	if err != nil {
		return runtime.WrapDiskFullError(err, "update medication", ctx.DB.Path())
	}

	today := ctx.App.Today()
	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintMedication(med, today)
	}

	cli := ctx.CLIFormatter()
	if med.IsTakenOn(today) {
		cli.Success(med.Name + " marked as taken today")
	} else {
		cli.Muted(med.Name + " marked as not taken today")
	}
	return nil
}

func runMedRemove(cmd *cobra.Command, args []string) error {
	med, err := ctx.App.RemoveMedication(args[0])
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.PrintJSON(map[string]interface{}{
			"status": "removed",
			"id":     med.ID(),
			"name":   med.Name,
		})
	}
	ctx.CLIFormatter().Success("Removed " + med.Name)
	return nil
}
