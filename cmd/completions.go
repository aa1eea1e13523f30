package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/renalog/renalog/internal/model"
)

// completeMedications returns medication IDs matching toComplete, described
// by name.
func completeMedications(toComplete string) []string {
	if ctx == nil || ctx.App == nil {
		return nil
	}

	meds, err := ctx.App.ListMedications()
	if err != nil {
		return nil
	}

	var completions []string
	for _, m := range meds {
		if strings.HasPrefix(m.ShortID(), toComplete) {
			completions = append(completions, m.ShortID()+"\t"+m.Name)
		}
	}
	return completions
}

// completeMedicationArgs handles completion for commands that take a
// medication ID.
func completeMedicationArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	// Only complete first argument
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return completeMedications(toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeFrequencies suggests the preset frequency labels.
func completeFrequencies(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var filtered []string
	for _, f := range model.FrequencyPresets {
		if strings.HasPrefix(f, toComplete) {
			filtered = append(filtered, f)
		}
	}
	return filtered, cobra.ShellCompDirectiveNoFileComp
}

// completeDates suggests common relative dates.
func completeDates(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	dates := []string{
		"today\tthis session",
		"yesterday\tyesterday's session",
		"2 days ago\tthe session before",
	}

	var filtered []string
	for _, d := range dates {
		if strings.HasPrefix(strings.Split(d, "\t")[0], toComplete) {
			filtered = append(filtered, d)
		}
	}
	return filtered, cobra.ShellCompDirectiveNoFileComp
}
