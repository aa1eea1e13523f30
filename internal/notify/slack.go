package notify

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/renalog/renalog/internal/model"
)

// SlackFormatter renders reminders as Block Kit messages.
type SlackFormatter struct{}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackBlock struct {
	Type     string      `json:"type"`
	Text     *slackText  `json:"text,omitempty"`
	Fields   []slackText `json:"fields,omitempty"`
	Elements []slackText `json:"elements,omitempty"`
}

type slackAttachment struct {
	Color  string       `json:"color"`
	Blocks []slackBlock `json:"blocks"`
}

// The top-level text is what phones show in the push preview.
type slackMessage struct {
	Text        string            `json:"text"`
	Attachments []slackAttachment `json:"attachments"`
}

// Format puts the dose in the notification preview and the card body so a
// patient can act on it without opening Slack.
func (f *SlackFormatter) Format(n *model.Notification) ([]byte, error) {
	body := []slackBlock{{
		Type: "section",
		Text: &slackText{Type: "mrkdwn", Text: fmt.Sprintf("*%s*\n%s", slackEscape(n.Title), slackEscape(n.Message))},
	}}

	if facts := doseFacts(n); len(facts) > 0 {
		cells := make([]slackText, 0, len(facts))
		for _, fc := range facts {
			cells = append(cells, slackText{
				Type: "mrkdwn",
				Text: fmt.Sprintf("*%s*\n%s", fc.Label, slackEscape(fc.Value)),
			})
		}
		body = append(body, slackBlock{Type: "section", Fields: cells})
	}

	body = append(body, slackBlock{
		Type:     "context",
		Elements: []slackText{{Type: "mrkdwn", Text: footer(n)}},
	})

	return json.Marshal(slackMessage{
		Text:        slackPreview(n),
		Attachments: []slackAttachment{{Color: fmt.Sprintf("#%06X", colorOf(n)), Blocks: body}},
	})
}

// ContentType returns the content type for Slack webhooks.
func (f *SlackFormatter) ContentType() string {
	return "application/json"
}

func slackPreview(n *model.Notification) string {
	if n.Dose == nil {
		return slackEscape(n.Title)
	}
	preview := n.Dose.Medication
	if n.Dose.Dosage != "" {
		preview += " " + n.Dose.Dosage
	}
	if n.Dose.Scheduled != "" {
		preview += " at " + n.Dose.Scheduled
	}
	return slackEscape(preview)
}

var slackEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// slackEscape escapes the characters mrkdwn treats as control sequences.
func slackEscape(s string) string {
	return slackEscaper.Replace(s)
}
