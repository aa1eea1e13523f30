package parser

import (
	"strings"
	"time"

	"github.com/markusmobius/go-dateparser"

	"github.com/renalog/renalog/internal/model"
)

// ParseDate parses a calendar date given as YYYY-MM-DD or natural language
// relative to now. Dates after now's calendar day are rejected. Empty input
// means today.
func ParseDate(field, input string, now time.Time) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" || strings.EqualFold(input, "today") {
		return model.Day(now), nil
	}

	t, err := time.ParseInLocation(model.DateLayout, input, now.Location())
	if err != nil {
		cfg := &dateparser.Configuration{
			CurrentTime: now,
		}
		result, perr := dateparser.Parse(cfg, input)
		if perr != nil || result.Time.IsZero() {
			return "", NewDateError(field, input)
		}
		t = result.Time.In(now.Location())
	}

	day := model.Day(t)
	if day > model.Day(now) {
		return "", NewFutureDateError(field, input)
	}
	return day, nil
}
