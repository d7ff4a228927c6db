// Package report turns teaching records into BC (monthly tally) workbooks.
//
// The package is storage-free: callers resolve records, weeks and classes into
// Entry/Week values first and everything here works on that typed view.
package report

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidSchoolYearLabel the label is not of the form YYYY-YYYY+1
var ErrInvalidSchoolYearLabel = errors.New("school year label must look like 2024-2025")

// ErrInvalidMonth month outside 1..12
var ErrInvalidMonth = errors.New("month must be within 1-12")

// FallbackMonth is the display bucket for callers that need a month for a week
// without a start date. It never affects totals.
const FallbackMonth = 9

// schoolYearStartMonth months >= this belong to the first calendar year of a school year
const schoolYearStartMonth = 9

// Week is the calendar slice of a school week.
type Week struct {
	ID        string
	Number    int
	StartDate time.Time
	EndDate   time.Time
}

// ParseSchoolYearLabel splits "2024-2025" into its two calendar years.
func ParseSchoolYearLabel(label string) (start, end int, err error) {
	parts := strings.Split(strings.TrimSpace(label), "-")
	if len(parts) != 2 || len(parts[0]) != 4 || len(parts[1]) != 4 {
		return 0, 0, ErrInvalidSchoolYearLabel
	}
	start, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, ErrInvalidSchoolYearLabel
	}
	end, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, ErrInvalidSchoolYearLabel
	}
	if end != start+1 {
		return 0, 0, ErrInvalidSchoolYearLabel
	}
	return start, end, nil
}

// NextSchoolYearLabel "2024-2025" -> "2025-2026"
func NextSchoolYearLabel(label string) (string, error) {
	_, end, err := ParseSchoolYearLabel(label)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d-%d", end, end+1), nil
}

// CalendarYearForMonth returns the calendar year month falls in for the given school year.
func CalendarYearForMonth(month int, label string) (int, error) {
	if month < 1 || month > 12 {
		return 0, ErrInvalidMonth
	}
	start, end, err := ParseSchoolYearLabel(label)
	if err != nil {
		return 0, err
	}
	if month >= schoolYearStartMonth {
		return start, nil
	}
	return end, nil
}

// AcademicMonthOf is the calendar month of the week's start date.
// ok is false when the week has no start date.
func AcademicMonthOf(w Week) (month int, ok bool) {
	if w.StartDate.IsZero() {
		return 0, false
	}
	return int(w.StartDate.Month()), true
}

// AcademicMonthOrder sorts September first: 9->0, 10->1, ..., 8->11.
func AcademicMonthOrder(month int) int {
	return (month + 12 - schoolYearStartMonth) % 12
}

// WeeksInMonth selects every week whose [start, end] intersects the calendar month,
// ascending by start date.
func WeeksInMonth(month int, label string, weeks []Week) ([]Week, error) {
	year, err := CalendarYearForMonth(month, label)
	if err != nil {
		return nil, err
	}
	monthStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)

	var out []Week
	for _, w := range weeks {
		if w.StartDate.IsZero() {
			continue
		}
		start := dateOnly(w.StartDate)
		end := start
		if !w.EndDate.IsZero() {
			end = dateOnly(w.EndDate)
		}
		if !start.After(monthEnd) && !end.Before(monthStart) {
			out = append(out, w)
		}
	}
	sortWeeks(out)
	return out, nil
}

// SlotWeeks the weeks of WeeksInMonth that also start in month. Entries are bucketed by
// the start month of their week, so these are the only weeks a month's entries can touch.
func SlotWeeks(month int, label string, weeks []Week) ([]Week, error) {
	inMonth, err := WeeksInMonth(month, label, weeks)
	if err != nil {
		return nil, err
	}
	out := inMonth[:0]
	for _, w := range inMonth {
		if m, ok := AcademicMonthOf(w); ok && m == month {
			out = append(out, w)
		}
	}
	return out, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func sortWeeks(weeks []Week) {
	sort.SliceStable(weeks, func(i, j int) bool {
		return dateOnly(weeks[i].StartDate).Before(dateOnly(weeks[j].StartDate))
	})
}
