package clinical

import (
	"errors"
	"fmt"
	"time"
)

// ErrStartAfterReference is returned when a treatment start date lies after
// the reference date.
var ErrStartAfterReference = errors.New("start date is in the future")

// MonthsOnTreatment counts calendar months between start and reference,
// ignoring the day of month. A start in January and a reference in March is
// two months regardless of days.
func MonthsOnTreatment(start, reference time.Time) (int, error) {
	start = start.In(reference.Location())
	sy, sm, sd := start.Date()
	ry, rm, rd := reference.Date()

	startDay := time.Date(sy, sm, sd, 0, 0, 0, 0, time.UTC)
	refDay := time.Date(ry, rm, rd, 0, 0, 0, 0, time.UTC)
	if startDay.After(refDay) {
		return 0, ErrStartAfterReference
	}

	months := (ry-sy)*12 + int(rm) - int(sm)
	if months < 0 {
		months = 0
	}
	return months, nil
}

// SplitMonths breaks a month count into whole years and remaining months.
func SplitMonths(months int) (years, rest int) {
	return months / 12, months % 12
}

// FormatMonths renders a month count as "Y years M months".
func FormatMonths(months int) string {
	years, rest := SplitMonths(months)
	return fmt.Sprintf("%d %s %d %s", years, plural(years, "year"), rest, plural(rest, "month"))
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
