package notify

import (
	"io"

	"github.com/renalog/renalog/internal/config"
)

// FromConfig assembles the configured reminder sinks behind the permission
// gate. With no sink enabled the returned sink accepts and drops every
// notification once permission is granted.
//
// Webhook reminders get a single attempt: a reminder only means something
// in its own minute, and the next minute belongs to the next check.
func FromConfig(cfg *config.Config, out io.Writer, color bool, perms PermissionSource) Sink {
	return build(cfg, out, color, perms, 0)
}

// FromConfigWithRetries is FromConfig with the configured http.max_retries
// applied to the webhook. It serves one-off deliveries such as the test
// notification, where nothing else is waiting on the result.
func FromConfigWithRetries(cfg *config.Config, out io.Writer, color bool, perms PermissionSource) Sink {
	return build(cfg, out, color, perms, cfg.HTTP.MaxRetries)
}

func build(cfg *config.Config, out io.Writer, color bool, perms PermissionSource, retries int) Sink {
	var sinks Multi
	if cfg.Notify.Terminal && out != nil {
		sinks = append(sinks, NewTerminalSink(out, cfg.Notify.Bell, color))
	}
	if cfg.Notify.WebhookURL != "" {
		client := NewHTTPClient(cfg.HTTP.Timeout, retries)
		sinks = append(sinks, NewWebhookSink(cfg.Notify.WebhookURL, cfg.Notify.WebhookType, cfg.Notify.WebhookTemplate, client))
	}
	return NewGated(sinks, perms)
}
