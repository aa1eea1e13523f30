package notify

import (
	"encoding/json"

	"github.com/renalog/renalog/internal/model"
)

// TeamsFormatter renders reminders as an Adaptive Card, the format Teams
// workflow webhooks accept.
type TeamsFormatter struct{}

type teamsMessage struct {
	Type        string            `json:"type"`
	Attachments []teamsAttachment `json:"attachments"`
}

type teamsAttachment struct {
	ContentType string    `json:"contentType"`
	Content     teamsCard `json:"content"`
}

type teamsCard struct {
	Schema  string         `json:"$schema"`
	Type    string         `json:"type"`
	Version string         `json:"version"`
	Body    []teamsElement `json:"body"`
}

// teamsElement covers the TextBlock and FactSet elements the card uses.
type teamsElement struct {
	Type     string      `json:"type"`
	Text     string      `json:"text,omitempty"`
	Size     string      `json:"size,omitempty"`
	Weight   string      `json:"weight,omitempty"`
	Color    string      `json:"color,omitempty"`
	IsSubtle bool        `json:"isSubtle,omitempty"`
	Wrap     bool        `json:"wrap,omitempty"`
	Facts    []teamsFact `json:"facts,omitempty"`
}

type teamsFact struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

// Format converts a notification to an Adaptive Card message.
func (f *TeamsFormatter) Format(n *model.Notification) ([]byte, error) {
	body := []teamsElement{
		{Type: "TextBlock", Text: n.Title, Size: "Medium", Weight: "Bolder", Color: teamsAccent(n), Wrap: true},
		{Type: "TextBlock", Text: n.Message, Wrap: true},
	}

	if facts := doseFacts(n); len(facts) > 0 {
		set := teamsElement{Type: "FactSet"}
		for _, fc := range facts {
			set.Facts = append(set.Facts, teamsFact{Title: fc.Label, Value: fc.Value})
		}
		body = append(body, set)
	}

	body = append(body, teamsElement{Type: "TextBlock", Text: footer(n), Size: "Small", IsSubtle: true, Wrap: true})

	return json.Marshal(teamsMessage{
		Type: "message",
		Attachments: []teamsAttachment{{
			ContentType: "application/vnd.microsoft.card.adaptive",
			Content: teamsCard{
				Schema:  "http://adaptivecards.io/schemas/adaptive-card.json",
				Type:    "AdaptiveCard",
				Version: "1.4",
				Body:    body,
			},
		}},
	})
}

// ContentType returns the content type for Teams webhooks.
func (f *TeamsFormatter) ContentType() string {
	return "application/json"
}

// Adaptive Cards only take named colors, so map ours onto them.
func teamsAccent(n *model.Notification) string {
	switch colorOf(n) {
	case model.ColorError:
		return "Attention"
	case model.ColorWarning:
		return "Warning"
	case model.ColorSuccess:
		return "Good"
	default:
		return "Accent"
	}
}
