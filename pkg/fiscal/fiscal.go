// Package fiscal places dated entities into configurable twelve-month
// fiscal years.
package fiscal

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yurifrl/agencyfin/pkg/models"
)

// dateLayouts are tried in order when parsing a start date.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
	"02/01/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
}

// ParseDate parses the date formats users type into forms and CSV files.
// The boolean is false for empty or unparsable input.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Window returns the first and last calendar day of a fiscal year: from the
// first of the start month in fiscalYear to the last day of the preceding
// month in fiscalYear+1.
func Window(fiscalYear int, start models.Month) (time.Time, time.Time) {
	from := time.Date(fiscalYear, time.Month(start), 1, 0, 0, 0, 0, time.UTC)
	// Day 0 normalises to the last day of the previous month.
	to := time.Date(fiscalYear+1, time.Month(start), 0, 0, 0, 0, 0, time.UTC)
	return from, to
}

// Contains reports whether date falls inside the fiscal year, comparing
// calendar days only.
func Contains(date time.Time, fiscalYear int, start models.Month) bool {
	if !start.Valid() {
		return false
	}
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	from, to := Window(fiscalYear, start)
	return !day.Before(from) && !day.After(to)
}

// IsInFiscalYear fails closed: an entity without a parsable start date is
// never in any fiscal year.
func IsInFiscalYear(entity models.Dated, fiscalYear int, start models.Month) bool {
	date, ok := ParseDate(entity.Start())
	if !ok {
		return false
	}
	return Contains(date, fiscalYear, start)
}

// IsValidForAllTime reports whether the entity has a parsable start date.
func IsValidForAllTime(entity models.Dated) bool {
	_, ok := ParseDate(entity.Start())
	return ok
}

// YearOf returns the fiscal year a date belongs to.
func YearOf(date time.Time, start models.Month) int {
	if date.Month() < time.Month(start) {
		return date.Year() - 1
	}
	return date.Year()
}

// MonthOrder lists the month abbreviations of a fiscal year in order,
// falling back to the calendar year for an invalid start month.
func MonthOrder(start models.Month) []string {
	if !start.Valid() {
		start = models.Month(time.January)
	}
	months := make([]string, 0, 12)
	for i := 0; i < 12; i++ {
		m := (int(start)-1+i)%12 + 1
		months = append(months, models.Month(m).Abbrev())
	}
	return months
}

// Label renders a fiscal year the way it is shown to users ("FY 2024-2025").
func Label(fiscalYear int) string {
	return fmt.Sprintf("FY %d-%d", fiscalYear, fiscalYear+1)
}

// AvailableYears returns the current calendar year, the five before it and
// any year that has stored reports, newest first.
func AvailableYears(now time.Time, historical []int) []int {
	seen := make(map[int]bool)
	var years []int
	for i := 0; i < 6; i++ {
		y := now.Year() - i
		seen[y] = true
		years = append(years, y)
	}
	for _, y := range historical {
		if !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}
