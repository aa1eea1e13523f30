package cmd

import (
	"github.com/spf13/cobra"

	"github.com/renalog/renalog/internal/app"
	"github.com/renalog/renalog/internal/runtime"
)

// Profile command flags.
var (
	profileFlagName   string
	profileFlagAge    string
	profileFlagStart  string
	profileFlagMonths string
)

// profileCmd represents the profile command.
var profileCmd = &cobra.Command{
	Use:     "profile",
	Aliases: []string{"me"},
	Short:   "Show or set the patient profile",
	RunE:    runProfileShow,
}

// profileSetCmd replaces the profile.
var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set the patient profile",
	Long: `Set name, age and time on dialysis. Age selects the blood-pressure limit
(150/90 from 65, otherwise 140/90). Time on dialysis is either a start date
or a number of months, not both.

Examples:
  renalog profile set --name Ana --age 67 --start 2023-01-15
  renalog profile set --name Ana --months 18`,
	Args: cobra.NoArgs,
	RunE: runProfileSet,
}

// profileShowCmd shows the profile.
var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the patient profile",
	Args:  cobra.NoArgs,
	RunE:  runProfileShow,
}

func init() {
	profileSetCmd.Flags().StringVar(&profileFlagName, "name", "", "Patient name")
	profileSetCmd.Flags().StringVar(&profileFlagAge, "age", "", "Age in years")
	profileSetCmd.Flags().StringVar(&profileFlagStart, "start", "", "Date dialysis started")
	profileSetCmd.Flags().StringVar(&profileFlagMonths, "months", "", "Months on dialysis")
	profileSetCmd.MarkFlagsMutuallyExclusive("start", "months")
	_ = profileSetCmd.RegisterFlagCompletionFunc("start", completeDates)

	profileCmd.AddCommand(profileSetCmd)
	profileCmd.AddCommand(profileShowCmd)
	rootCmd.AddCommand(profileCmd)
}

func runProfileSet(cmd *cobra.Command, args []string) error {
	_, err := ctx.App.SaveProfile(app.ProfileInput{
		Name:      profileFlagName,
		Age:       profileFlagAge,
		StartDate: profileFlagStart,
		Months:    profileFlagMonths,
	})
	if err != nil {
		return runtime.WrapDiskFullError(err, "save profile", ctx.DB.Path())
	}

	if !ctx.IsJSON() {
		ctx.CLIFormatter().Success("Profile saved")
	}
	return runProfileShow(cmd, args)
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	profile := ctx.App.State().Profile
	months, ok, err := ctx.App.MonthsOnTreatment()

	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintProfile(&profile, months, ok, err)
	}
	ctx.CLIFormatter().PrintProfile(&profile, months, ok, err)
	return nil
}
