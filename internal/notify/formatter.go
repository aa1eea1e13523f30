// Package notify delivers reminder notifications to the terminal and to
// chat webhooks, gated by the user's notification permission.
package notify

import (
	"fmt"

	"github.com/renalog/renalog/internal/model"
)

// Webhook payload formats.
const (
	WebhookGeneric = "generic"
	WebhookSlack   = "slack"
	WebhookDiscord = "discord"
	WebhookTeams   = "teams"
)

// brand appears in footers of formatted messages.
const brand = "renalog"

// Formatter formats notifications for a specific webhook type.
type Formatter interface {
	// Format converts a notification into the webhook-specific payload.
	Format(n *model.Notification) ([]byte, error)

	// ContentType returns the HTTP Content-Type for the payload.
	ContentType() string
}

// GetFormatter returns the appropriate formatter for a webhook type.
func GetFormatter(webhookType string) Formatter {
	switch webhookType {
	case WebhookDiscord:
		return &DiscordFormatter{}
	case WebhookSlack:
		return &SlackFormatter{}
	case WebhookTeams:
		return &TeamsFormatter{}
	default:
		return &GenericFormatter{}
	}
}

// fact is one labelled line of a reminder card.
type fact struct {
	Label string
	Value string
}

// doseFacts lists what a medication reminder asks for, in reading order.
// Notifications without a dose have no facts.
func doseFacts(n *model.Notification) []fact {
	d := n.Dose
	if d == nil {
		return nil
	}
	facts := []fact{{Label: "Medication", Value: d.Medication}}
	if d.Dosage != "" {
		facts = append(facts, fact{Label: "Dosage", Value: d.Dosage})
	}
	if d.Scheduled != "" {
		facts = append(facts, fact{Label: "Scheduled", Value: d.Scheduled})
	}
	return facts
}

// footer is the small print under every chat card: app, kind, local time.
func footer(n *model.Notification) string {
	return fmt.Sprintf("%s · %s · %s", brand, n.TypeLabel(), n.Timestamp.Format("Mon Jan 2 15:04"))
}

func colorOf(n *model.Notification) int {
	if n.Color == 0 {
		return model.DefaultColorForType(n.Type)
	}
	return n.Color
}
