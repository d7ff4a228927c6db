package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"teaching-hours/backend/config"
	"teaching-hours/backend/internal/dto"
	"teaching-hours/backend/internal/model"
	"teaching-hours/backend/internal/repository"
	apperrors "teaching-hours/backend/pkg/errors"
)

func setupTestExportService(f *schoolFixture, cfg *config.ReportConfig) ExportService {
	svc := NewExportService(cfg, f.store.repo(), zap.NewNop())
	svc.(*exportService).layout.Now = func() time.Time { return date(2024, 10, 5) }
	return svc
}

func TestExportService_BC9_SingleTeacher(t *testing.T) {
	f := newSchoolFixture()
	f.addRecord("r1", f.teacherID, f.weekIDs[0], f.class10ID, 10, model.RecordTypeTeaching)
	svc := setupTestExportService(f, &config.ReportConfig{})

	result, err := svc.ExportReport(context.Background(), &dto.ExportRequest{
		SchoolYearID: f.yearID,
		TeacherID:    f.teacherID,
		Type:         dto.ExportTypeBC,
		BCNumber:     9,
	})
	if err != nil {
		t.Fatalf("ExportReport failed: %v", err)
	}
	if result.Filename != "BC9_2024-2025.xlsx" {
		t.Errorf("unexpected filename %q", result.Filename)
	}
	if result.SheetCount != 1 || result.TeacherCount != 1 {
		t.Errorf("expected 1 sheet for 1 teacher, got %d/%d", result.SheetCount, result.TeacherCount)
	}

	wb, err := excelize.OpenReader(result.Workbook)
	if err != nil {
		t.Fatalf("workbook should be valid xlsx: %v", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) != 1 || sheets[0] != "BC 9" {
		t.Fatalf("expected single sheet \"BC 9\", got %v", sheets)
	}
	want := map[string]string{
		"B15": "Khối 10",
		"C15": "10",
		"G15": "10",
		"G21": "10",
		"H21": "68",
		"I21": "-58",
	}
	for cell, v := range want {
		got, err := wb.GetCellValue("BC 9", cell)
		if err != nil {
			t.Fatalf("read %s: %v", cell, err)
		}
		if got != v {
			t.Errorf("%s = %q, want %q", cell, got, v)
		}
	}
}

func TestExportService_NoRecords(t *testing.T) {
	f := newSchoolFixture()
	svc := setupTestExportService(f, nil)

	_, err := svc.ExportReport(context.Background(), &dto.ExportRequest{
		SchoolYearID: f.yearID,
		TeacherID:    f.teacherID,
		Type:         dto.ExportTypeBC,
		BCNumber:     9,
	})
	if !errors.Is(err, ErrExportNoData) {
		t.Fatalf("expected ErrExportNoData, got: %v", err)
	}
	if apperrors.HTTPStatus(err) != 404 {
		t.Errorf("zero-result export should map to 404, got %d", apperrors.HTTPStatus(err))
	}
}

func TestExportService_OtherMonthOnly(t *testing.T) {
	f := newSchoolFixture()
	f.addRecord("r1", f.teacherID, f.weekIDs[0], f.class10ID, 10, model.RecordTypeTeaching)
	svc := setupTestExportService(f, nil)

	_, err := svc.ExportReport(context.Background(), &dto.ExportRequest{
		TeacherID: f.teacherID,
		Type:      dto.ExportTypeBC,
		BCNumber:  10,
	})
	if !errors.Is(err, ErrExportNoData) {
		t.Errorf("October has no records, expected ErrExportNoData, got: %v", err)
	}
}

func TestExportService_YearMultiTeacher(t *testing.T) {
	f := newSchoolFixture()
	f.store.teachers["teacher-minh"] = model.Teacher{
		TeacherID: "teacher-minh", SchoolYearID: f.yearID, Name: "Trần Văn Minh",
		HomeroomClassID: f.class11ID, Subjects: []model.Subject{{SubjectID: f.subjectID}},
	}
	f.addRecord("r1", f.teacherID, f.weekIDs[0], f.class10ID, 4, model.RecordTypeTeaching)
	f.addRecord("r2", "teacher-minh", f.weekIDs[1], f.class11ID, 3, model.RecordTypeTeaching)
	// w5 starts on 30 Sep, it belongs to September
	f.addRecord("r3", "teacher-minh", f.weekIDs[4], f.class11ID, 2, model.RecordTypeExtraDuty)
	svc := setupTestExportService(f, nil)

	result, err := svc.ExportReport(context.Background(), &dto.ExportRequest{
		TeacherIDs: []string{f.teacherID, "teacher-minh", "teacher-missing"},
		Type:       dto.ExportTypeYear,
	})
	if err != nil {
		t.Fatalf("ExportReport failed: %v", err)
	}
	if result.Filename != "CaNam_2024-2025_3GV.xlsx" {
		t.Errorf("unexpected filename %q", result.Filename)
	}
	if result.TeacherCount != 2 {
		t.Errorf("missing teacher should be skipped, got TeacherCount=%d", result.TeacherCount)
	}

	wb, err := excelize.OpenReader(result.Workbook)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer wb.Close()
	sheets := wb.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "BC9_Lan" || sheets[1] != "BC9_Minh" {
		t.Errorf("unexpected sheets %v", sheets)
	}
}

// flakyTeacherRepo fails lookups of one teacher id
type flakyTeacherRepo struct {
	repository.TeacherRepository
	failID string
}

func (r flakyTeacherRepo) GetByID(ctx context.Context, id string) (*model.Teacher, error) {
	if id == r.failID {
		return nil, errors.New("connection reset")
	}
	return r.TeacherRepository.GetByID(ctx, id)
}

func TestExportService_TeacherLookupFailureIsSkipped(t *testing.T) {
	f := newSchoolFixture()
	f.store.teachers["teacher-minh"] = model.Teacher{
		TeacherID: "teacher-minh", SchoolYearID: f.yearID, Name: "Trần Văn Minh",
		HomeroomClassID: f.class11ID, Subjects: []model.Subject{{SubjectID: f.subjectID}},
	}
	f.addRecord("r1", f.teacherID, f.weekIDs[0], f.class10ID, 4, model.RecordTypeTeaching)
	f.addRecord("r2", "teacher-minh", f.weekIDs[1], f.class11ID, 3, model.RecordTypeTeaching)

	repo := f.store.repo()
	repo.Teacher = flakyTeacherRepo{TeacherRepository: repo.Teacher, failID: "teacher-minh"}
	svc := NewExportService(nil, repo, zap.NewNop())

	result, err := svc.ExportReport(context.Background(), &dto.ExportRequest{
		TeacherIDs: []string{f.teacherID, "teacher-minh"},
		Type:       dto.ExportTypeYear,
	})
	if err != nil {
		t.Fatalf("one failing teacher must not abort the export: %v", err)
	}
	if result.SheetCount != 1 || result.TeacherCount != 1 {
		t.Errorf("expected Lan's sheet only, got %d sheets for %d teachers", result.SheetCount, result.TeacherCount)
	}

	wb, err := excelize.OpenReader(result.Workbook)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer wb.Close()
	if sheets := wb.GetSheetList(); len(sheets) != 1 || sheets[0] != "BC9_Lan" {
		t.Errorf("unexpected sheets %v", sheets)
	}

	_, err = svc.ExportReport(context.Background(), &dto.ExportRequest{TeacherID: "teacher-minh", Type: dto.ExportTypeYear})
	if !errors.Is(err, ErrExportNoData) {
		t.Errorf("only the failing teacher requested, expected ErrExportNoData, got: %v", err)
	}
}

func TestExportService_SameLastNameDifferentCase(t *testing.T) {
	f := newSchoolFixture()
	f.store.teachers["teacher-lan2"] = model.Teacher{
		TeacherID: "teacher-lan2", SchoolYearID: f.yearID, Name: "Trần Thị lan",
		HomeroomClassID: f.class11ID, Subjects: []model.Subject{{SubjectID: f.subjectID}},
	}
	f.addRecord("r1", f.teacherID, f.weekIDs[0], f.class10ID, 4, model.RecordTypeTeaching)
	f.addRecord("r2", "teacher-lan2", f.weekIDs[0], f.class11ID, 3, model.RecordTypeTeaching)
	svc := setupTestExportService(f, nil)

	result, err := svc.ExportReport(context.Background(), &dto.ExportRequest{
		TeacherIDs: []string{f.teacherID, "teacher-lan2"},
		Type:       dto.ExportTypeBC,
		BCNumber:   9,
	})
	if err != nil {
		t.Fatalf("ExportReport failed: %v", err)
	}

	wb, err := excelize.OpenReader(result.Workbook)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer wb.Close()
	sheets := wb.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "BC9_Lan" || sheets[1] != "BC9_lan~2" {
		t.Fatalf("both teachers need their own sheet, got %v", sheets)
	}
	for sheet, want := range map[string]string{"BC9_Lan": "4", "BC9_lan~2": "3"} {
		got, _ := wb.GetCellValue(sheet, "G21")
		if got != want {
			t.Errorf("%s grand total = %q, want %q", sheet, got, want)
		}
	}
}

// A week spanning two months belongs to the month it starts in, so BC 10 starts
// its columns with the first week starting in October.
func TestExportService_BC10HeadersStartWithOctoberWeek(t *testing.T) {
	f := newSchoolFixture()
	f.store.weeks["week-6"] = model.Week{
		WeekID: "week-6", SchoolYearID: f.yearID, WeekNumber: 6,
		StartDate: date(2024, 10, 7), EndDate: date(2024, 10, 13), Status: model.StatusActive,
	}
	f.addRecord("r1", f.teacherID, f.weekIDs[4], f.class10ID, 2, model.RecordTypeTeaching)
	f.addRecord("r2", f.teacherID, "week-6", f.class10ID, 4, model.RecordTypeTeaching)
	svc := setupTestExportService(f, nil)

	result, err := svc.ExportReport(context.Background(), &dto.ExportRequest{
		TeacherID: f.teacherID, Type: dto.ExportTypeBC, BCNumber: 10,
	})
	if err != nil {
		t.Fatalf("ExportReport failed: %v", err)
	}

	wb, err := excelize.OpenReader(result.Workbook)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer wb.Close()
	want := map[string]string{
		"C12": "Tuần 1\n(07/10 - 13/10)",
		"D12": "Tuần 2",
		"C15": "4",
		"G21": "4",
		// 4 periods over the single October week
		"A8": "Tổng số tiết dạy/tuần: 4",
	}
	for cell, v := range want {
		got, _ := wb.GetCellValue("BC 10", cell)
		if got != v {
			t.Errorf("%s = %q, want %q", cell, got, v)
		}
	}
}

func TestExportService_WeekScope(t *testing.T) {
	f := newSchoolFixture()
	f.addRecord("r1", f.teacherID, f.weekIDs[0], f.class10ID, 4, model.RecordTypeTeaching)
	f.addRecord("r2", f.teacherID, f.weekIDs[1], f.class10ID, 6, model.RecordTypeTeaching)
	svc := setupTestExportService(f, nil)

	result, err := svc.ExportReport(context.Background(), &dto.ExportRequest{
		TeacherID: f.teacherID,
		Type:      dto.ExportTypeWeek,
		WeekID:    f.weekIDs[1],
	})
	if err != nil {
		t.Fatalf("ExportReport failed: %v", err)
	}
	if result.Filename != "BaoCaoTuan_2024-2025.xlsx" {
		t.Errorf("unexpected filename %q", result.Filename)
	}

	wb, err := excelize.OpenReader(result.Workbook)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer wb.Close()
	total, _ := wb.GetCellValue("BC 9", "G21")
	if total != "6" {
		t.Errorf("only the selected week counts, grand total = %q", total)
	}

	_, err = svc.ExportReport(context.Background(), &dto.ExportRequest{
		TeacherID: f.teacherID, Type: dto.ExportTypeWeek, WeekID: "week-other-year",
	})
	if !errors.Is(err, ErrExportWeekNotFound) {
		t.Errorf("expected ErrExportWeekNotFound, got: %v", err)
	}
}

func TestExportService_SemesterRanges(t *testing.T) {
	f := newSchoolFixture()
	f.addRecord("r1", f.teacherID, f.weekIDs[0], f.class10ID, 4, model.RecordTypeTeaching)
	svc := setupTestExportService(f, nil)
	ctx := context.Background()

	result, err := svc.ExportReport(ctx, &dto.ExportRequest{TeacherID: f.teacherID, Type: dto.ExportTypeSemester, Semester: 1})
	if err != nil {
		t.Fatalf("semester 1 should contain week 1: %v", err)
	}
	if result.Filename != "HocKy1_2024-2025.xlsx" {
		t.Errorf("unexpected filename %q", result.Filename)
	}

	_, err = svc.ExportReport(ctx, &dto.ExportRequest{TeacherID: f.teacherID, Type: dto.ExportTypeSemester, Semester: 2})
	if !errors.Is(err, ErrExportNoData) {
		t.Errorf("semester 2 starts at week 19, expected ErrExportNoData, got: %v", err)
	}
}

func TestExportService_BadScope(t *testing.T) {
	f := newSchoolFixture()
	svc := setupTestExportService(f, nil)
	ctx := context.Background()

	cases := []*dto.ExportRequest{
		{TeacherID: f.teacherID, Type: dto.ExportTypeBC},
		{TeacherID: f.teacherID, Type: dto.ExportTypeBC, BCNumber: 13},
		{TeacherID: f.teacherID, Type: dto.ExportTypeWeek},
		{TeacherID: f.teacherID, Type: dto.ExportTypeSemester, Semester: 3},
		{TeacherID: f.teacherID, Type: "decade"},
	}
	for _, req := range cases {
		if _, err := svc.ExportReport(ctx, req); !errors.Is(err, ErrExportBadScope) {
			t.Errorf("%+v: expected ErrExportBadScope, got: %v", req, err)
		}
	}

	if _, err := svc.ExportReport(ctx, &dto.ExportRequest{Type: dto.ExportTypeYear}); !errors.Is(err, ErrExportNoTeacher) {
		t.Errorf("expected ErrExportNoTeacher, got: %v", err)
	}
	_, err := svc.ExportReport(ctx, &dto.ExportRequest{SchoolYearID: "year-missing", TeacherID: f.teacherID, Type: dto.ExportTypeYear})
	if !errors.Is(err, ErrExportYearNotFound) {
		t.Errorf("expected ErrExportYearNotFound, got: %v", err)
	}
}

func TestExportService_SlotOverflowError(t *testing.T) {
	f := newSchoolFixture()
	f.addRecord("r1", f.teacherID, f.weekIDs[4], f.class10ID, 4, model.RecordTypeTeaching)
	svc := setupTestExportService(f, &config.ReportConfig{SlotCount: 4, SlotOverflow: "error"})

	_, err := svc.ExportReport(context.Background(), &dto.ExportRequest{
		TeacherID: f.teacherID, Type: dto.ExportTypeBC, BCNumber: 9,
	})
	if !errors.Is(err, ErrExportSlotsExceeded) {
		t.Errorf("expected ErrExportSlotsExceeded, got: %v", err)
	}
}

func TestExportFilename(t *testing.T) {
	if got := exportFilename("BC9", "2024-2025", 1); got != "BC9_2024-2025.xlsx" {
		t.Errorf("got %q", got)
	}
	if got := exportFilename("HocKy2", "2024-2025", 4); got != "HocKy2_2024-2025_4GV.xlsx" {
		t.Errorf("got %q", got)
	}
}
