package report

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// DefaultStandardHours monthly teaching norm printed on every BC sheet
const DefaultStandardHours = 68

const (
	emptyPlaceholder = ".........."
	paymentLine      = "Số tiền được thanh toán: ............................................"
)

// Layout fixed text and numbers of the BC sheet.
type Layout struct {
	InstitutionLines []string
	Locality         string
	StandardHours    int
	Slots            SlotPolicy
	ColumnWidths     []float64
	Now              func() time.Time
}

// DefaultLayout the layout used when nothing is configured
func DefaultLayout() Layout {
	return Layout{
		InstitutionLines: []string{"SỞ GIÁO DỤC VÀ ĐÀO TẠO", "TRƯỜNG THPT"},
		StandardHours:    DefaultStandardHours,
		Slots:            DefaultSlotPolicy,
		Now:              time.Now,
	}
}

// SheetInput one teacher's data for one month.
type SheetInput struct {
	TeacherName   string
	SubjectName   string
	HomeroomClass string
	Month         int
	SchoolYear    string
	Entries       []Entry
	MonthWeeks    []Week
}

// Assignment weekly load of one class
type Assignment struct {
	ClassName string
	PerWeek   int
}

// TotalsRow bottom row of the table
type TotalsRow struct {
	Slots    []int
	Grand    int
	Standard int
	Excess   int
}

// Sheet is the rendered-independent model of a BC sheet.
type Sheet struct {
	Institution      []string
	Title            string
	SubjectLine      string
	TeacherLine      string
	Assignments      []Assignment
	AssignmentLine   string
	TeachingPerWeek  int
	HomeroomLine     string
	ExtraDutyPerWeek string
	WeekHeaders      []string
	Rows             []CategoryRow
	Totals           TotalsRow
	PaymentLine      string
	DateLine         string
	Signatures       []string
}

// SignatureLabels left to right
var SignatureLabels = []string{"PHÓ HIỆU TRƯỞNG", "DUYỆT CỦA TỔ TRƯỞNG", "GIÁO VIÊN"}

// BuildSheet assembles the BC sheet model for one teacher and month.
func BuildSheet(in SheetInput, layout Layout) (*Sheet, error) {
	if in.Month < 1 || in.Month > 12 {
		return nil, ErrInvalidMonth
	}
	if _, _, err := ParseSchoolYearLabel(in.SchoolYear); err != nil {
		return nil, err
	}
	if layout.Slots.Count <= 0 {
		layout.Slots = DefaultSlotPolicy
	}
	if layout.Now == nil {
		layout.Now = time.Now
	}

	shown := in.MonthWeeks
	if len(shown) > layout.Slots.Count {
		shown = shown[:layout.Slots.Count]
	}
	weekCount := len(shown)

	rows, err := Categorize(in.Entries, in.MonthWeeks, layout.Slots)
	if err != nil {
		return nil, err
	}

	sheet := &Sheet{
		Institution: layout.InstitutionLines,
		Title:       fmt.Sprintf("BẢNG KÊ GIỜ DẠY THÁNG %02d NĂM HỌC %s", in.Month, in.SchoolYear),
		SubjectLine: "Môn: " + in.SubjectName,
		TeacherLine: "Họ và tên giáo viên: " + in.TeacherName,
		Rows:        rows,
		PaymentLine: paymentLine,
		Signatures:  SignatureLabels,
	}

	// assignment summary
	var teaching, extraDuty int
	perClass := make(map[string]int)
	for _, e := range in.Entries {
		switch {
		case e.Regular():
			teaching += e.Periods
			perClass[e.ClassName] += e.Periods
		case e.Type == TypeExtraDuty:
			extraDuty += e.Periods
		}
	}
	classes := make([]string, 0, len(perClass))
	for name := range perClass {
		classes = append(classes, name)
	}
	sort.Strings(classes)
	parts := make([]string, 0, len(classes))
	for _, name := range classes {
		a := Assignment{ClassName: name, PerWeek: WeeklyAverage(perClass[name], weekCount)}
		sheet.Assignments = append(sheet.Assignments, a)
		parts = append(parts, fmt.Sprintf("%s (%d tiết/tuần)", a.ClassName, a.PerWeek))
	}
	sheet.AssignmentLine = "Phân công giảng dạy: " + strings.Join(parts, ", ")
	sheet.TeachingPerWeek = WeeklyAverage(teaching, weekCount)

	homeroom := in.HomeroomClass
	if homeroom == "" {
		homeroom = emptyPlaceholder
	}
	sheet.HomeroomLine = "Chủ nhiệm lớp: " + homeroom

	if extraDuty == 0 {
		sheet.ExtraDutyPerWeek = emptyPlaceholder
	} else {
		sheet.ExtraDutyPerWeek = fmt.Sprintf("%d", WeeklyAverage(extraDuty, weekCount))
	}

	// table
	sheet.WeekHeaders = make([]string, layout.Slots.Count)
	for i := range sheet.WeekHeaders {
		if i < len(shown) {
			w := shown[i]
			sheet.WeekHeaders[i] = fmt.Sprintf("Tuần %d\n(%s - %s)", i+1,
				w.StartDate.Format("02/01"), w.EndDate.Format("02/01"))
		} else {
			sheet.WeekHeaders[i] = fmt.Sprintf("Tuần %d", i+1)
		}
	}

	standard := layout.StandardHours
	if standard == 0 {
		standard = DefaultStandardHours
	}
	totals := TotalsRow{Slots: make([]int, layout.Slots.Count), Standard: standard}
	for _, r := range rows {
		for i, v := range r.Slots {
			totals.Slots[i] += v
		}
		totals.Grand += r.Total
	}
	totals.Excess = totals.Grand - totals.Standard
	sheet.Totals = totals

	sheet.DateLine = dateLine(layout.Locality, layout.Now())

	return sheet, nil
}

func dateLine(locality string, t time.Time) string {
	line := fmt.Sprintf("ngày %02d tháng %02d năm %d", t.Day(), int(t.Month()), t.Year())
	if locality == "" {
		return "N" + strings.TrimPrefix(line, "n")
	}
	return locality + ", " + line
}

// SheetName "BC 9" for single-teacher exports, "BC9_Lan" when several teachers share a workbook.
func SheetName(month int, teacherName string, multi bool) string {
	if !multi {
		return truncateRunes(fmt.Sprintf("BC %d", month), MaxSheetNameLen)
	}
	return truncateRunes(fmt.Sprintf("BC%d_%s", month, lastNameToken(teacherName)), MaxSheetNameLen)
}

// lastNameToken Vietnamese names put the given name last: "Nguyễn Thị Lan" -> "Lan".
func lastNameToken(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "GV"
	}
	return fields[len(fields)-1]
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
