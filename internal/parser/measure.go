package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// pressureRegex matches "SYS/DIA" with optional spaces and an optional unit.
var pressureRegex = regexp.MustCompile(`(?i)^(\d{2,3})\s*/\s*(\d{2,3})(?:\s*mmhg)?$`)

// ParsePositive parses a decimal number that must be greater than zero.
// A comma decimal separator is accepted.
func ParsePositive(field, input string) (float64, error) {
	v, err := parseNumber(field, input)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, NewNumberError(field, input, "must be greater than zero")
	}
	return v, nil
}

// ParseOptionalNonNegative parses an optional number that may be zero.
// Empty input yields nil.
func ParseOptionalNonNegative(field, input string) (*float64, error) {
	if strings.TrimSpace(input) == "" {
		return nil, nil
	}
	v, err := parseNumber(field, input)
	if err != nil {
		return nil, err
	}
	if v < 0 {
		return nil, NewNumberError(field, input, "cannot be negative")
	}
	return &v, nil
}

// ParsePositiveInt parses a whole number greater than zero.
func ParsePositiveInt(field, input string) (int, error) {
	input = strings.TrimSpace(input)
	v, err := strconv.Atoi(input)
	if err != nil {
		return 0, NewNumberError(field, input, "not a whole number")
	}
	if v <= 0 {
		return 0, NewNumberError(field, input, "must be greater than zero")
	}
	return v, nil
}

// ParseNonNegativeInt parses a whole number that may be zero.
func ParseNonNegativeInt(field, input string) (int, error) {
	input = strings.TrimSpace(input)
	v, err := strconv.Atoi(input)
	if err != nil {
		return 0, NewNumberError(field, input, "not a whole number")
	}
	if v < 0 {
		return 0, NewNumberError(field, input, "cannot be negative")
	}
	return v, nil
}

// ParsePressure parses a reading like "128/82" into systolic and diastolic.
func ParsePressure(input string) (systolic, diastolic int, err error) {
	input = strings.TrimSpace(input)
	m := pressureRegex.FindStringSubmatch(input)
	if m == nil {
		return 0, 0, NewPressureError(input)
	}
	systolic, _ = strconv.Atoi(m[1])
	diastolic, _ = strconv.Atoi(m[2])
	if systolic == 0 || diastolic == 0 {
		return 0, 0, NewPressureError(input)
	}
	return systolic, diastolic, nil
}

func parseNumber(field, input string) (float64, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, NewNumberError(field, input, "value is required")
	}
	v, err := strconv.ParseFloat(strings.Replace(input, ",", ".", 1), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, NewNumberError(field, input, "not a number")
	}
	return v, nil
}
