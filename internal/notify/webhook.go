package notify

import (
	"context"
	"fmt"

	"github.com/renalog/renalog/internal/logging"
	"github.com/renalog/renalog/internal/metrics"
	"github.com/renalog/renalog/internal/model"
)

// WebhookSink posts notifications to a single chat or HTTP webhook.
type WebhookSink struct {
	url       string
	formatter Formatter
	client    *HTTPClient
}

// NewWebhookSink creates a webhook sink. An empty template uses the
// formatter for webhookType; a template only applies to generic webhooks.
func NewWebhookSink(url, webhookType, template string, client *HTTPClient) *WebhookSink {
	var formatter Formatter
	if webhookType == WebhookGeneric && template != "" {
		formatter = NewGenericFormatter(template)
	} else {
		formatter = GetFormatter(webhookType)
	}
	return &WebhookSink{url: url, formatter: formatter, client: client}
}

// Notify formats and posts n.
func (s *WebhookSink) Notify(ctx context.Context, n *model.Notification) error {
	payload, err := s.formatter.Format(n)
	if err != nil {
		metrics.RecordNotification("webhook", metrics.StatusError)
		return fmt.Errorf("failed to format notification: %w", err)
	}

	result := s.client.Send(ctx, s.url, s.formatter.ContentType(), payload)
	if result.Error != nil {
		metrics.RecordNotification("webhook", metrics.StatusError)
		// Transport errors quote the URL, which carries the webhook secret
		return fmt.Errorf("webhook delivery failed after %d attempts: %s",
			result.Attempts, logging.MaskString(result.Error.Error()))
	}

	metrics.RecordNotification("webhook", metrics.StatusOK)
	logging.DebugContext(ctx, "webhook delivered",
		logging.KeySink, "webhook",
		logging.KeyStatus, result.StatusCode,
		logging.KeyDuration, result.Duration.Milliseconds(),
	)
	return nil
}

// TestNotification builds the notification sent by "notify test".
func TestNotification() *model.Notification {
	return model.NewNotification(
		model.NotifyTest,
		"renalog test",
		"Notifications are working. Medication reminders will look like this.",
	)
}
