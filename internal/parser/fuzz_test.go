package parser

import (
	"regexp"
	"testing"

	"github.com/renalog/renalog/internal/model"
)

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// FuzzParseDate checks that date parsing never panics and never returns a
// day after the reference day.
// Run with: go test ./internal/parser -fuzz=FuzzParseDate -fuzztime=30s
func FuzzParseDate(f *testing.F) {
	seeds := []string{
		"today",
		"yesterday",
		"2 days ago",
		"last monday",
		"2024-03-01",
		"01/03/2024",
		"tomorrow",
		"",
		"   ",
		"2024-13-45",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		got, err := ParseDate("date", input, refNow)
		if err != nil {
			return
		}
		if got == "" || got > model.Day(refNow) {
			t.Errorf("ParseDate(%q) = %q, want a day up to %s", input, got, model.Day(refNow))
		}
	})
}

// FuzzParseClock checks that accepted reminder times are always
// normalized to HH:MM.
// Run with: go test ./internal/parser -fuzz=FuzzParseClock -fuzztime=30s
func FuzzParseClock(f *testing.F) {
	seeds := []string{"08:00", "8am", "8:30pm", "20:30", "24:00", "noon", "", "9"}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		got, err := ParseClock(input)
		if err != nil {
			return
		}
		if !clockPattern.MatchString(got) {
			t.Errorf("ParseClock(%q) = %q, want HH:MM", input, got)
		}
	})
}

// FuzzParsePressure checks that accepted readings are always positive.
// Run with: go test ./internal/parser -fuzz=FuzzParsePressure -fuzztime=30s
func FuzzParsePressure(f *testing.F) {
	seeds := []string{"128/82", "90/60", " 140 / 90 ", "0/0", "120-80", "/", "999999999999/1"}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		sys, dia, err := ParsePressure(input)
		if err != nil {
			return
		}
		if sys <= 0 || dia <= 0 {
			t.Errorf("ParsePressure(%q) = %d/%d, want positive values", input, sys, dia)
		}
	})
}

// FuzzParsePositive checks that accepted measurements are always above zero.
// Run with: go test ./internal/parser -fuzz=FuzzParsePositive -fuzztime=30s
func FuzzParsePositive(f *testing.F) {
	seeds := []string{"72.4", "70", "72,4", "-1", "0", "NaN", "Inf", "1e308", ""}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		v, err := ParsePositive("weight", input)
		if err != nil {
			return
		}
		if !(v > 0) {
			t.Errorf("ParsePositive(%q) = %v, want > 0", input, v)
		}
	})
}
