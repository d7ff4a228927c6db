package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"teaching-hours/backend/config"
	"teaching-hours/backend/internal/dto"
	"teaching-hours/backend/internal/model"
	"teaching-hours/backend/internal/report"
	"teaching-hours/backend/internal/repository"
	apperrors "teaching-hours/backend/pkg/errors"
)

var (
	ErrExportNoData        = apperrors.New(apperrors.KindNotFound, "không có dữ liệu giờ dạy trong phạm vi đã chọn")
	ErrExportBadScope      = apperrors.New(apperrors.KindBadInput, "phạm vi xuất báo cáo không hợp lệ")
	ErrExportNoTeacher     = apperrors.New(apperrors.KindBadInput, "cần chọn ít nhất một giáo viên")
	ErrExportGenerateFail  = apperrors.New(apperrors.KindSystem, "tạo tệp Excel thất bại")
	ErrExportYearNotFound  = apperrors.New(apperrors.KindNotFound, "năm học không tồn tại")
	ErrExportWeekNotFound  = apperrors.New(apperrors.KindNotFound, "tuần không tồn tại trong năm học")
	ErrExportSlotsExceeded = apperrors.New(apperrors.KindConflict, "tháng có nhiều tuần hơn số cột của bảng kê")
)

// Semester week ranges
const (
	semesterOneLastWeek = 18
	semesterTwoLastWeek = 35
)

// ExportResult a generated workbook ready to stream
type ExportResult struct {
	Workbook     *bytes.Buffer
	Filename     string
	SheetCount   int
	TeacherCount int
}

// ExportService builds BC workbooks
type ExportService interface {
	ExportReport(ctx context.Context, req *dto.ExportRequest) (*ExportResult, error)
}

type exportService struct {
	repo   *repository.Repository
	layout report.Layout
	style  report.Style
	logger *zap.Logger
}

// NewExportService creates an ExportService from the report settings
func NewExportService(cfg *config.ReportConfig, repo *repository.Repository, logger *zap.Logger) ExportService {
	layout, style := reportSettings(cfg)
	return &exportService{repo: repo, layout: layout, style: style, logger: logger}
}

func reportSettings(cfg *config.ReportConfig) (report.Layout, report.Style) {
	layout := report.DefaultLayout()
	style := report.DefaultStyle
	if cfg == nil {
		return layout, style
	}

	if len(cfg.InstitutionLines) > 0 {
		layout.InstitutionLines = cfg.InstitutionLines
	}
	layout.Locality = cfg.Locality
	if cfg.StandardHours > 0 {
		layout.StandardHours = cfg.StandardHours
	}
	if cfg.SlotCount > 0 {
		layout.Slots.Count = cfg.SlotCount
	}
	if cfg.SlotOverflow != "" {
		layout.Slots.Overflow = report.Overflow(cfg.SlotOverflow)
	}
	layout.ColumnWidths = cfg.ColumnWidths

	if cfg.FontName != "" {
		style.FontName = cfg.FontName
	}
	if cfg.FontSize > 0 {
		style.FontSize = cfg.FontSize
	}
	style.ExplicitNoFill = cfg.ExplicitNoFill
	return layout, style
}

// exportScope the weeks and months a request covers
type exportScope struct {
	// weekIDs nil means every week of the year
	weekIDs []string
	// month 0 means every month with data
	month int
	kind  string
}

// ════════════════════════════════════════════════════════════
// ExportReport
// ════════════════════════════════════════════════════════════
//
// One sheet per (teacher, month), teachers in request order and months in
// academic order. A teacher whose lookups fail, who is missing or who has no
// records in scope is skipped; only a workbook failure aborts the export.

func (s *exportService) ExportReport(ctx context.Context, req *dto.ExportRequest) (*ExportResult, error) {
	teacherIDs := req.AllTeacherIDs()
	if len(teacherIDs) == 0 {
		return nil, ErrExportNoTeacher
	}

	year, err := s.resolveYear(ctx, req.SchoolYearID)
	if err != nil {
		return nil, err
	}

	weekRows, err := s.repo.Week.ListBySchoolYear(ctx, year.SchoolYearID, "")
	if err != nil {
		s.logger.Error("load weeks failed", zap.String("school_year_id", year.SchoolYearID), zap.Error(err))
		return nil, err
	}
	weeks := make([]report.Week, len(weekRows))
	for i := range weekRows {
		weeks[i] = toReportWeek(&weekRows[i])
	}

	scope, err := buildScope(req, weekRows)
	if err != nil {
		return nil, err
	}

	wb := report.NewWorkbook(s.style)
	defer wb.Close()

	multi := len(teacherIDs) > 1
	teacherCount := 0
	for _, teacherID := range teacherIDs {
		n, err := s.addTeacherSheets(ctx, wb, teacherID, year, weeks, scope, multi)
		if err != nil {
			switch {
			case errors.Is(err, report.ErrSlotOverflow):
				return nil, ErrExportSlotsExceeded
			case errors.Is(err, ErrExportGenerateFail):
				s.logger.Error("render sheet failed", zap.String("teacher_id", teacherID), zap.Error(err))
				return nil, ErrExportGenerateFail
			case ctx.Err() != nil:
				return nil, ctx.Err()
			}
			s.logger.Warn("export: teacher skipped", zap.String("teacher_id", teacherID), zap.Error(err))
			continue
		}
		if n > 0 {
			teacherCount++
		}
	}

	if wb.SheetCount() == 0 {
		return nil, ErrExportNoData
	}

	buf := new(bytes.Buffer)
	if _, err := wb.WriteTo(buf); err != nil {
		s.logger.Error("write workbook failed", zap.Error(err))
		return nil, ErrExportGenerateFail
	}

	return &ExportResult{
		Workbook:     buf,
		Filename:     exportFilename(scope.kind, year.Label, len(teacherIDs)),
		SheetCount:   wb.SheetCount(),
		TeacherCount: teacherCount,
	}, nil
}

// addTeacherSheets renders the teacher's months into wb and returns the number of sheets added
func (s *exportService) addTeacherSheets(ctx context.Context, wb *report.Workbook, teacherID string, year *model.SchoolYear, weeks []report.Week, scope exportScope, multi bool) (int, error) {
	teacher, err := s.repo.Teacher.GetByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrTeacherNotFound
		}
		return 0, err
	}
	if teacher.SchoolYearID != year.SchoolYearID {
		return 0, ErrTeacherNotFound
	}

	records, err := s.repo.TeachingRecord.ListForExport(ctx, teacherID, year.SchoolYearID, scope.weekIDs)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}

	groups := report.GroupByMonth(toEntries(records))
	months := report.SortedMonths(groups)
	if scope.month != 0 {
		if groups[scope.month] == nil {
			return 0, nil
		}
		months = []int{scope.month}
	}

	homeroom := ""
	if teacher.HomeroomClass != nil {
		homeroom = teacher.HomeroomClass.Name
	}

	// build every sheet first so a failing month leaves no partial sheets behind
	sheets := make([]*report.Sheet, 0, len(months))
	for _, month := range months {
		group := groups[month]
		monthWeeks, err := report.SlotWeeks(month, year.Label, weeks)
		if err != nil {
			return 0, err
		}
		if len(monthWeeks) == 0 {
			monthWeeks = group.Weeks
		}
		sheet, err := report.BuildSheet(report.SheetInput{
			TeacherName:   teacher.Name,
			SubjectName:   teacher.SubjectNames(),
			HomeroomClass: homeroom,
			Month:         month,
			SchoolYear:    year.Label,
			Entries:       group.Entries,
			MonthWeeks:    monthWeeks,
		}, s.layout)
		if err != nil {
			return 0, err
		}
		sheets = append(sheets, sheet)
	}

	for i, sheet := range sheets {
		sink, err := wb.AddSheet(report.SheetName(months[i], teacher.Name, multi))
		if err != nil {
			return i, fmt.Errorf("%w: %v", ErrExportGenerateFail, err)
		}
		if err := report.Render(sheet, sink, s.layout.ColumnWidths); err != nil {
			return i, fmt.Errorf("%w: %v", ErrExportGenerateFail, err)
		}
	}
	return len(sheets), nil
}

func (s *exportService) resolveYear(ctx context.Context, id string) (*model.SchoolYear, error) {
	var (
		year *model.SchoolYear
		err  error
	)
	if id == "" {
		year, err = s.repo.SchoolYear.GetActive(ctx)
	} else {
		year, err = s.repo.SchoolYear.GetByID(ctx, id)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExportYearNotFound
		}
		s.logger.Error("load school year failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return year, nil
}

// buildScope validates the request's type against the weeks of the year
func buildScope(req *dto.ExportRequest, weeks []model.Week) (exportScope, error) {
	switch req.Type {
	case dto.ExportTypeBC:
		if req.BCNumber < 1 || req.BCNumber > 12 {
			return exportScope{}, ErrExportBadScope
		}
		return exportScope{month: req.BCNumber, kind: fmt.Sprintf("BC%d", req.BCNumber)}, nil

	case dto.ExportTypeWeek:
		ids := req.AllWeekIDs()
		if len(ids) == 0 {
			return exportScope{}, ErrExportBadScope
		}
		known := make(map[string]bool, len(weeks))
		for _, w := range weeks {
			known[w.WeekID] = true
		}
		for _, id := range ids {
			if !known[id] {
				return exportScope{}, ErrExportWeekNotFound
			}
		}
		return exportScope{weekIDs: ids, kind: "BaoCaoTuan"}, nil

	case dto.ExportTypeSemester:
		first, last := 1, semesterOneLastWeek
		switch req.Semester {
		case 1:
		case 2:
			first, last = semesterOneLastWeek+1, semesterTwoLastWeek
		default:
			return exportScope{}, ErrExportBadScope
		}
		ids := make([]string, 0)
		for _, w := range weeks {
			if w.WeekNumber >= first && w.WeekNumber <= last {
				ids = append(ids, w.WeekID)
			}
		}
		return exportScope{weekIDs: ids, kind: fmt.Sprintf("HocKy%d", req.Semester)}, nil

	case dto.ExportTypeYear:
		return exportScope{kind: "CaNam"}, nil
	}
	return exportScope{}, ErrExportBadScope
}

// exportFilename "BC9_2024-2025.xlsx", "CaNam_2024-2025_3GV.xlsx"
func exportFilename(kind, label string, teachers int) string {
	name := kind + "_" + label
	if teachers > 1 {
		name += fmt.Sprintf("_%dGV", teachers)
	}
	return name + ".xlsx"
}

func toReportWeek(w *model.Week) report.Week {
	return report.Week{
		ID:        w.WeekID,
		Number:    w.WeekNumber,
		StartDate: civilDate(w.StartDate),
		EndDate:   civilDate(w.EndDate),
	}
}

// toEntries joins records with their week and class; records whose week is gone are dropped
func toEntries(records []model.TeachingRecord) []report.Entry {
	entries := make([]report.Entry, 0, len(records))
	for i := range records {
		r := &records[i]
		if r.Week == nil {
			continue
		}
		e := report.Entry{
			RecordID: r.RecordID,
			Week:     toReportWeek(r.Week),
			ClassID:  r.ClassID,
			Periods:  r.Periods,
			Type:     report.RecordType(r.RecordType),
		}
		if r.Class != nil {
			e.ClassName = r.Class.Name
			e.Grade = r.Class.Grade
		}
		if r.Subject != nil {
			e.SubjectName = r.Subject.Name
		}
		entries = append(entries, e)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Week.StartDate.Before(entries[j].Week.StartDate)
	})
	return entries
}
