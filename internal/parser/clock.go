package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// clock24Regex matches 24-hour times like "8:30", "08:30" or "0830".
	clock24Regex = regexp.MustCompile(`^([01]?\d|2[0-3]):?([0-5]\d)$`)
	// clock12Regex matches 12-hour times like "9pm" or "7:45 am".
	clock12Regex = regexp.MustCompile(`(?i)^(1[0-2]|0?[1-9])(?::([0-5]\d))?\s*(am|pm)$`)
)

// ParseClock normalizes a time of day to zero-padded 24-hour "HH:MM".
func ParseClock(input string) (string, error) {
	input = strings.TrimSpace(input)

	if m := clock24Regex.FindStringSubmatch(input); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		return fmt.Sprintf("%02d:%02d", hour, minute), nil
	}

	if m := clock12Regex.FindStringSubmatch(input); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		pm := strings.EqualFold(m[3], "pm")
		switch {
		case pm && hour != 12:
			hour += 12
		case !pm && hour == 12:
			hour = 0
		}
		return fmt.Sprintf("%02d:%02d", hour, minute), nil
	}

	return "", NewClockError(input)
}

// ParseOptionalClock is ParseClock that maps empty input to no reminder.
func ParseOptionalClock(input string) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", nil
	}
	return ParseClock(input)
}
