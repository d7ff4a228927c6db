package report

import (
	"errors"
	"math"
	"sort"
)

// RecordType tag of a teaching record
type RecordType string

const (
	TypeTeaching       RecordType = "teaching"
	TypeVocational1    RecordType = "vocational_1"
	TypeVocational2    RecordType = "vocational_2"
	TypeVocational3    RecordType = "vocational_3"
	TypeExtraDuty      RecordType = "extra_duty"
	TypeExamProctoring RecordType = "exam_proctoring"
)

// RecordTypes every type accepted at write time
var RecordTypes = []RecordType{
	TypeTeaching,
	TypeVocational1,
	TypeVocational2,
	TypeVocational3,
	TypeExtraDuty,
	TypeExamProctoring,
}

// KnownType reports whether t is one of RecordTypes.
func KnownType(t RecordType) bool {
	for _, known := range RecordTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Entry is one teaching record joined with its week and class.
type Entry struct {
	RecordID    string
	Week        Week
	ClassID     string
	ClassName   string
	Grade       int
	SubjectName string
	Periods     int
	Type        RecordType
}

// Regular reports whether the entry is ordinary classroom teaching (an unset type counts).
func (e Entry) Regular() bool {
	return e.Type == TypeTeaching || e.Type == ""
}

// MonthGroup the entries of one academic month and the distinct weeks they touch.
type MonthGroup struct {
	Month   int
	Entries []Entry
	Weeks   []Week
}

// GroupByMonth buckets entries by the month of their week's start date.
// Entries whose week has no start date are left out.
func GroupByMonth(entries []Entry) map[int]*MonthGroup {
	groups := make(map[int]*MonthGroup)
	seen := make(map[int]map[string]bool)

	for _, e := range entries {
		month, ok := AcademicMonthOf(e.Week)
		if !ok {
			continue
		}
		g, exists := groups[month]
		if !exists {
			g = &MonthGroup{Month: month}
			groups[month] = g
			seen[month] = make(map[string]bool)
		}
		g.Entries = append(g.Entries, e)

		key := e.Week.ID
		if key == "" {
			key = e.Week.StartDate.Format("2006-01-02")
		}
		if !seen[month][key] {
			seen[month][key] = true
			g.Weeks = append(g.Weeks, e.Week)
		}
	}

	for _, g := range groups {
		sortWeeks(g.Weeks)
	}
	return groups
}

// SortedMonths months of groups in school-year order.
func SortedMonths(groups map[int]*MonthGroup) []int {
	months := make([]int, 0, len(groups))
	for m := range groups {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool {
		return AcademicMonthOrder(months[i]) < AcademicMonthOrder(months[j])
	})
	return months
}

// ── categories ──

// Category is one row of the BC table. Grade categories match regular teaching
// of that grade; the others match on record type alone.
type Category struct {
	Label string
	Grade int
	Type  RecordType
}

// Matches reports whether e is counted in c.
func (c Category) Matches(e Entry) bool {
	if c.Grade != 0 {
		return e.Regular() && e.Grade == c.Grade
	}
	return e.Type == c.Type
}

// Categories fixed row order of the BC table
var Categories = []Category{
	{Label: "Khối 12", Grade: 12},
	{Label: "Khối 11", Grade: 11},
	{Label: "Khối 10", Grade: 10},
	{Label: "Dạy nghề 1", Type: TypeVocational1},
	{Label: "Dạy nghề 2", Type: TypeVocational2},
	{Label: "Dạy nghề 3", Type: TypeVocational3},
	{Label: "Kiêm nhiệm", Type: TypeExtraDuty},
	{Label: "Coi thi", Type: TypeExamProctoring},
}

// Overflow decides what happens to entries whose week lies beyond the last slot.
type Overflow string

const (
	OverflowTruncate Overflow = "truncate"
	OverflowMerge    Overflow = "merge"
	OverflowError    Overflow = "error"
)

// ErrSlotOverflow a month has more weeks with data than the table has slots
var ErrSlotOverflow = errors.New("month has more weeks than report slots")

// SlotPolicy number of week columns per month and the overflow rule.
type SlotPolicy struct {
	Count    int
	Overflow Overflow
}

// DefaultSlotPolicy four weeks per month, extra weeks dropped
var DefaultSlotPolicy = SlotPolicy{Count: 4, Overflow: OverflowTruncate}

// CategoryRow per-slot and total periods of one category.
type CategoryRow struct {
	Label string
	Slots []int
	Total int
}

// Categorize sums periods per category and week slot. The slot of an entry is the
// position of its week in slotWeeks; entries whose week is not in slotWeeks are left out.
func Categorize(entries []Entry, slotWeeks []Week, policy SlotPolicy) ([]CategoryRow, error) {
	if policy.Count <= 0 {
		policy = DefaultSlotPolicy
	}

	slotOf := make(map[string]int, len(slotWeeks))
	for i, w := range slotWeeks {
		slotOf[w.ID] = i
	}

	rows := make([]CategoryRow, len(Categories))
	for i, cat := range Categories {
		rows[i] = CategoryRow{Label: cat.Label, Slots: make([]int, policy.Count)}
	}

	for _, e := range entries {
		ci := categoryIndex(e)
		if ci < 0 {
			continue
		}

		slot, ok := slotOf[e.Week.ID]
		if !ok {
			// week outside the sheet's columns, not an overflow
			continue
		}
		if slot >= policy.Count {
			switch policy.Overflow {
			case OverflowError:
				return nil, ErrSlotOverflow
			case OverflowMerge:
				slot = policy.Count - 1
			default:
				continue
			}
		}

		rows[ci].Slots[slot] += e.Periods
		rows[ci].Total += e.Periods
	}

	return rows, nil
}

func categoryIndex(e Entry) int {
	for i, cat := range Categories {
		if cat.Matches(e) {
			return i
		}
	}
	return -1
}

// WeeklyAverage round-half-up of total/weekCount; a zero week count leaves total unchanged.
func WeeklyAverage(total, weekCount int) int {
	if weekCount < 1 {
		weekCount = 1
	}
	return int(math.Floor(float64(total)/float64(weekCount) + 0.5))
}
