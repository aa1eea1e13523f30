package notify

import (
	"encoding/json"
	"time"

	"github.com/renalog/renalog/internal/model"
)

// DiscordFormatter renders reminders as a single embed.
type DiscordFormatter struct {
	// Username overrides the webhook's configured bot name when set.
	Username string
}

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordFooter struct {
	Text string `json:"text"`
}

type discordEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Color       int            `json:"color"`
	Fields      []discordField `json:"fields,omitempty"`
	Footer      discordFooter  `json:"footer"`
	Timestamp   string         `json:"timestamp"`
}

type discordMessage struct {
	Username string         `json:"username,omitempty"`
	Embeds   []discordEmbed `json:"embeds"`
}

// Format converts a notification to an embed. Dose facts render inline so
// they sit on one row.
func (f *DiscordFormatter) Format(n *model.Notification) ([]byte, error) {
	embed := discordEmbed{
		Title:       n.Title,
		Description: n.Message,
		Color:       colorOf(n),
		Footer:      discordFooter{Text: footer(n)},
		Timestamp:   n.Timestamp.UTC().Format(time.RFC3339),
	}
	for _, fc := range doseFacts(n) {
		embed.Fields = append(embed.Fields, discordField{Name: fc.Label, Value: fc.Value, Inline: true})
	}

	return json.Marshal(discordMessage{Username: f.Username, Embeds: []discordEmbed{embed}})
}

// ContentType returns the content type for Discord webhooks.
func (f *DiscordFormatter) ContentType() string {
	return "application/json"
}
