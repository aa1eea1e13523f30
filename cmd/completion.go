package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// completionCmd represents the completion command.
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for renalog.

To load completions:

Bash:
  $ source <(renalog completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ renalog completion bash > /etc/bash_completion.d/renalog
  # macOS:
  $ renalog completion bash > $(brew --prefix)/etc/bash_completion.d/renalog

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ renalog completion zsh > "${fpath[1]}/_renalog"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ renalog completion fish | source

  # To load completions for each session, execute once:
  $ renalog completion fish > ~/.config/fish/completions/renalog.fish
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
