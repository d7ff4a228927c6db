package report

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// MaxSheetNameLen Excel's sheet-name length limit
const MaxSheetNameLen = 31

const defaultSheet = "Sheet1"

// Style visual settings of the generated workbook.
type Style struct {
	FontName string
	FontSize float64
	// ExplicitNoFill writes an explicit empty pattern fill on styled cells.
	ExplicitNoFill bool
}

// DefaultStyle Times New Roman 12
var DefaultStyle = Style{FontName: "Times New Roman", FontSize: 12}

// Workbook is an excelize file that hands out one Sink per sheet.
type Workbook struct {
	f      *excelize.File
	style  Style
	styles map[Role]int
	names  map[string]bool // lower-cased, Excel compares sheet names case-insensitively
	sheets int
}

// NewWorkbook creates an empty workbook.
func NewWorkbook(style Style) *Workbook {
	if style.FontName == "" {
		style.FontName = DefaultStyle.FontName
	}
	if style.FontSize == 0 {
		style.FontSize = DefaultStyle.FontSize
	}
	return &Workbook{
		f:      excelize.NewFile(),
		style:  style,
		styles: make(map[Role]int),
		names:  make(map[string]bool),
	}
}

// AddSheet creates a sheet named after name, made valid and unique.
func (w *Workbook) AddSheet(name string) (Sink, error) {
	name = w.uniqueName(sanitizeSheetName(name))

	if w.sheets == 0 {
		if err := w.f.SetSheetName(defaultSheet, name); err != nil {
			return nil, fmt.Errorf("rename default sheet: %w", err)
		}
	} else {
		if _, err := w.f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %q: %w", name, err)
		}
	}
	w.names[strings.ToLower(name)] = true
	w.sheets++

	return &excelSink{wb: w, sheet: name}, nil
}

// SheetCount number of sheets added through AddSheet
func (w *Workbook) SheetCount() int { return w.sheets }

// SheetNames in creation order
func (w *Workbook) SheetNames() []string {
	if w.sheets == 0 {
		return nil
	}
	return w.f.GetSheetList()
}

// WriteTo serialises the workbook as xlsx.
func (w *Workbook) WriteTo(out io.Writer) (int64, error) {
	if w.sheets > 0 {
		w.f.SetActiveSheet(0)
	}
	return w.f.WriteTo(out)
}

// Close releases temporary resources held by excelize.
func (w *Workbook) Close() error {
	return w.f.Close()
}

func (w *Workbook) uniqueName(name string) string {
	if !w.names[strings.ToLower(name)] {
		return name
	}
	for i := 2; ; i++ {
		suffix := fmt.Sprintf("~%d", i)
		candidate := truncateRunes(name, MaxSheetNameLen-utf8.RuneCountInString(suffix)) + suffix
		if !w.names[strings.ToLower(candidate)] {
			return candidate
		}
	}
}

var sheetNameReplacer = strings.NewReplacer(
	":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "(", "]", ")",
)

func sanitizeSheetName(name string) string {
	name = strings.Trim(sheetNameReplacer.Replace(strings.TrimSpace(name)), "'")
	if name == "" {
		name = "BC"
	}
	return truncateRunes(name, MaxSheetNameLen)
}

func (w *Workbook) styleID(role Role) (int, error) {
	if id, ok := w.styles[role]; ok {
		return id, nil
	}
	id, err := w.f.NewStyle(w.styleFor(role))
	if err != nil {
		return 0, err
	}
	w.styles[role] = id
	return id, nil
}

func (w *Workbook) styleFor(role Role) *excelize.Style {
	font := &excelize.Font{Family: w.style.FontName, Size: w.style.FontSize}
	align := &excelize.Alignment{Vertical: "center", WrapText: true}
	var border []excelize.Border

	switch role {
	case RoleInstitution:
		font.Bold = true
		align.Horizontal = "center"
	case RoleTitle:
		font.Bold = true
		font.Size = w.style.FontSize + 2
		align.Horizontal = "center"
	case RoleTableHeader, RoleTotal:
		font.Bold = true
		align.Horizontal = "center"
		border = thinBorder()
	case RoleTableCell:
		align.Horizontal = "center"
		border = thinBorder()
	case RoleSignature:
		font.Bold = true
		align.Horizontal = "center"
	default:
		align.Horizontal = "left"
	}

	st := &excelize.Style{Font: font, Alignment: align, Border: border}
	if w.style.ExplicitNoFill {
		st.Fill = excelize.Fill{Type: "pattern", Pattern: 0}
	}
	return st
}

func thinBorder() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
}

// excelSink addresses one sheet of a Workbook.
type excelSink struct {
	wb    *Workbook
	sheet string
}

func (s *excelSink) SetValue(row, col int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return s.wb.f.SetCellValue(s.sheet, cell, value)
}

func (s *excelSink) Merge(row1, col1, row2, col2 int) error {
	from, to, err := cellRange(row1, col1, row2, col2)
	if err != nil {
		return err
	}
	return s.wb.f.MergeCell(s.sheet, from, to)
}

func (s *excelSink) SetColWidth(col int, width float64) error {
	name, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return err
	}
	return s.wb.f.SetColWidth(s.sheet, name, name, width)
}

func (s *excelSink) SetRowHeight(row int, height float64) error {
	return s.wb.f.SetRowHeight(s.sheet, row, height)
}

func (s *excelSink) StyleRange(row1, col1, row2, col2 int, role Role) error {
	id, err := s.wb.styleID(role)
	if err != nil {
		return err
	}
	from, to, err := cellRange(row1, col1, row2, col2)
	if err != nil {
		return err
	}
	return s.wb.f.SetCellStyle(s.sheet, from, to, id)
}

func cellRange(row1, col1, row2, col2 int) (string, string, error) {
	from, err := excelize.CoordinatesToCellName(col1, row1)
	if err != nil {
		return "", "", err
	}
	to, err := excelize.CoordinatesToCellName(col2, row2)
	if err != nil {
		return "", "", err
	}
	return from, to, nil
}
