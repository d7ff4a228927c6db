package report

import "strconv"

// Sink is the spreadsheet capability the renderer needs. Rows and columns are 1-based.
type Sink interface {
	SetValue(row, col int, value interface{}) error
	Merge(row1, col1, row2, col2 int) error
	SetColWidth(col int, width float64) error
	SetRowHeight(row int, height float64) error
}

// Role names a styling class. Sinks that style cells implement Styler.
type Role string

const (
	RoleInstitution Role = "institution"
	RoleTitle       Role = "title"
	RoleText        Role = "text"
	RoleTableHeader Role = "table_header"
	RoleTableCell   Role = "table_cell"
	RoleTotal       Role = "total"
	RoleSignature   Role = "signature"
)

// Styler is optionally implemented by sinks that apply styles.
type Styler interface {
	StyleRange(row1, col1, row2, col2 int, role Role) error
}

var defaultColumnWidths = []float64{6, 22, 12, 12, 12, 12, 10, 10, 10}

const (
	titleRowHeight  = 30
	headerRowHeight = 42
)

// renderer keeps the first error so the layout code reads top to bottom.
type renderer struct {
	sink   Sink
	styler Styler
	err    error
}

func (r *renderer) set(row, col int, v interface{}) {
	if r.err == nil {
		r.err = r.sink.SetValue(row, col, v)
	}
}

func (r *renderer) merge(row1, col1, row2, col2 int) {
	if r.err == nil && (row1 != row2 || col1 != col2) {
		r.err = r.sink.Merge(row1, col1, row2, col2)
	}
}

func (r *renderer) style(row1, col1, row2, col2 int, role Role) {
	if r.err == nil && r.styler != nil {
		r.err = r.styler.StyleRange(row1, col1, row2, col2, role)
	}
}

func (r *renderer) line(row, lastCol int, text string, role Role) {
	r.set(row, 1, text)
	r.merge(row, 1, row, lastCol)
	r.style(row, 1, row, lastCol, role)
}

// Render writes sheet into sink. Columns: No., content, one per week slot,
// row total, standard hours, excess hours.
func Render(sheet *Sheet, sink Sink, columnWidths []float64) error {
	r := &renderer{sink: sink}
	if s, ok := sink.(Styler); ok {
		r.styler = s
	}

	slots := len(sheet.WeekHeaders)
	colTotal := 3 + slots
	colStandard := colTotal + 1
	colExcess := colTotal + 2
	lastCol := colExcess

	widths := columnWidths
	if len(widths) == 0 {
		widths = defaultColumnWidths
	}
	for col := 1; col <= lastCol && r.err == nil; col++ {
		w := widths[len(widths)-1]
		if col <= len(widths) {
			w = widths[col-1]
		}
		r.err = sink.SetColWidth(col, w)
	}

	row := 1
	for _, text := range sheet.Institution {
		r.set(row, 1, text)
		r.merge(row, 1, row, 3)
		r.style(row, 1, row, 3, RoleInstitution)
		row++
	}
	row++

	if r.err == nil {
		r.err = sink.SetRowHeight(row, titleRowHeight)
	}
	r.line(row, lastCol, sheet.Title, RoleTitle)
	row++

	for _, text := range []string{
		sheet.SubjectLine,
		sheet.TeacherLine,
		sheet.AssignmentLine,
		"Tổng số tiết dạy/tuần: " + strconv.Itoa(sheet.TeachingPerWeek),
		sheet.HomeroomLine,
		"Số tiết kiêm nhiệm/tuần: " + sheet.ExtraDutyPerWeek,
	} {
		r.line(row, lastCol, text, RoleText)
		row++
	}
	row++

	// table header
	if r.err == nil {
		r.err = sink.SetRowHeight(row, headerRowHeight)
	}
	r.set(row, 1, "STT")
	r.set(row, 2, "Nội dung")
	for i, h := range sheet.WeekHeaders {
		r.set(row, 3+i, h)
	}
	r.set(row, colTotal, "Tổng")
	r.set(row, colStandard, "Định mức")
	r.set(row, colExcess, "Vượt giờ")
	r.style(row, 1, row, lastCol, RoleTableHeader)
	row++

	first := row
	for i, cr := range sheet.Rows {
		r.set(row, 1, i+1)
		r.set(row, 2, cr.Label)
		for s, v := range cr.Slots {
			r.set(row, 3+s, v)
		}
		r.set(row, colTotal, cr.Total)
		row++
	}
	if row > first {
		r.style(first, 1, row-1, lastCol, RoleTableCell)
	}

	r.set(row, 2, "Tổng cộng")
	for s, v := range sheet.Totals.Slots {
		r.set(row, 3+s, v)
	}
	r.set(row, colTotal, sheet.Totals.Grand)
	r.set(row, colStandard, sheet.Totals.Standard)
	r.set(row, colExcess, sheet.Totals.Excess)
	r.style(row, 1, row, lastCol, RoleTotal)
	row += 2

	r.line(row, lastCol, sheet.PaymentLine, RoleText)
	row++

	dateCol := lastCol - 3
	if dateCol < 1 {
		dateCol = 1
	}
	r.set(row, dateCol, sheet.DateLine)
	r.merge(row, dateCol, row, lastCol)
	r.style(row, dateCol, row, lastCol, RoleText)
	row++

	// three signature blocks spread over the table width
	bounds := signatureColumns(lastCol, len(sheet.Signatures))
	for i, label := range sheet.Signatures {
		r.set(row, bounds[i][0], label)
		r.merge(row, bounds[i][0], row, bounds[i][1])
		r.style(row, bounds[i][0], row, bounds[i][1], RoleSignature)
	}

	return r.err
}

// signatureColumns splits columns 1..lastCol into n contiguous blocks.
func signatureColumns(lastCol, n int) [][2]int {
	if n == 0 {
		return nil
	}
	out := make([][2]int, n)
	start := 1
	for i := 0; i < n; i++ {
		width := (lastCol - start + 1) / (n - i)
		if width < 1 {
			width = 1
		}
		out[i] = [2]int{start, start + width - 1}
		start += width
	}
	return out
}
