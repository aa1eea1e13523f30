package cmd

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	apperrors "github.com/renalog/renalog/internal/errors"
	"github.com/renalog/renalog/internal/logging"
	"github.com/renalog/renalog/internal/model"
	"github.com/renalog/renalog/internal/notify"
	"github.com/renalog/renalog/internal/validate"
)

// notifyCmd represents the notify command.
var notifyCmd = &cobra.Command{
	Use:     "notify",
	Aliases: []string{"notifications"},
	Short:   "Manage reminder notifications",
}

// notifyPermissionCmd shows or changes the notification permission.
var notifyPermissionCmd = &cobra.Command{
	Use:   "permission [grant|deny|reset]",
	Short: "Show or change whether reminders may notify you",
	Long: `Reminders are only delivered after you grant permission. Without an
argument the current state is shown.

Examples:
  renalog notify permission
  renalog notify permission grant
  renalog notify permission deny
  renalog notify permission reset`,
	ValidArgs: []string{"grant", "deny", "reset"},
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	RunE:      runNotifyPermission,
}

// notifyTestCmd sends a test notification.
var notifyTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test notification through the configured sinks",
	Args:  cobra.NoArgs,
	RunE:  runNotifyTest,
}

func init() {
	notifyCmd.AddCommand(notifyPermissionCmd)
	notifyCmd.AddCommand(notifyTestCmd)
	rootCmd.AddCommand(notifyCmd)
}

func runNotifyPermission(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		var p model.Permission
		switch args[0] {
		case "grant":
			p = model.PermissionGranted
		case "deny":
			p = model.PermissionDenied
		case "reset":
			p = model.PermissionUnrequested
		}
		if err := ctx.App.SetPermission(p); err != nil {
			return err
		}
	}

	p, err := ctx.App.Permission()
	if err != nil {
		return err
	}
	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintPermission(p)
	}
	ctx.CLIFormatter().PrintPermission(p)
	return nil
}

func runNotifyTest(cmd *cobra.Command, args []string) error {
	cfg := ctx.Config
	if cfg.Notify.WebhookURL != "" {
		if err := validate.URL(cfg.Notify.WebhookURL); err != nil {
			return err
		}
	}

	var out io.Writer
	if !ctx.IsJSON() {
		out = os.Stdout
	}
	sink := notify.FromConfigWithRetries(cfg, out, ctx.Formatter.IsColorEnabled(), ctx.App)

	err := sink.Notify(cmd.Context(), notify.TestNotification())
	if errors.Is(err, notify.ErrNotPermitted) {
		return apperrors.NewUserError("Notifications are not permitted",
			"Run 'renalog notify permission grant' first").WithCause(err)
	}
	if err != nil {
		logging.Warn("test notification failed", logging.KeyError, err)
		return apperrors.NewSystemErrorWithOp("notify_test", "test notification failed", err)
	}

	if ctx.IsJSON() {
		return ctx.Formatter.PrintJSON(map[string]interface{}{
			"status":  "sent",
			"webhook": logging.MaskURL(cfg.Notify.WebhookURL),
		})
	}
	ctx.CLIFormatter().Success("Test notification sent")
	return nil
}
