package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"teaching-hours/backend/internal/dto"
	"teaching-hours/backend/internal/model"
	"teaching-hours/backend/internal/repository"
	apperrors "teaching-hours/backend/pkg/errors"
)

var (
	ErrWeekNotFound   = apperrors.New(apperrors.KindNotFound, "tuần không tồn tại")
	ErrWeekBadDates   = apperrors.New(apperrors.KindBadInput, "ngày không hợp lệ, định dạng YYYY-MM-DD và ngày kết thúc không trước ngày bắt đầu")
	ErrWeekOverlap    = apperrors.New(apperrors.KindConflict, "khoảng ngày trùng với một tuần đã có trong năm học")
	ErrWeekInUse      = apperrors.New(apperrors.KindConflict, "tuần đã có dữ liệu giờ dạy, không thể xóa")
	ErrWeekICSInvalid = apperrors.New(apperrors.KindBadInput, "tệp lịch .ics không hợp lệ")
)

// WeekService school weeks. Week numbers are kept dense (1..n by start date) within a year.
type WeekService interface {
	Create(ctx context.Context, schoolYearID string, req *dto.CreateWeekRequest, callerID string) (*dto.WeekResponse, error)
	// Generate count consecutive 7-day weeks starting at req.StartDate
	Generate(ctx context.Context, schoolYearID string, req *dto.GenerateWeeksRequest, callerID string) ([]dto.WeekResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateWeekRequest, callerID string) (*dto.WeekResponse, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, schoolYearID, status string) ([]dto.WeekResponse, error)
	GetByID(ctx context.Context, id string) (*dto.WeekResponse, error)
	ImportICS(ctx context.Context, schoolYearID string, reader io.Reader, callerID string) (*dto.ImportResult, error)
	// ExportICS the year's weeks as an iCalendar document and its file name
	ExportICS(ctx context.Context, schoolYearID string) ([]byte, string, error)
}

type weekService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewWeekService creates a WeekService
func NewWeekService(repo *repository.Repository, logger *zap.Logger) WeekService {
	return &weekService{repo: repo, logger: logger}
}

// dateRange inclusive [start, end]
type dateRange struct {
	start, end time.Time
}

func (r dateRange) overlaps(o dateRange) bool {
	return !r.start.After(o.end) && !o.start.After(r.end)
}

func parseDateRange(start, end string) (dateRange, error) {
	s, err := parseDate(start)
	if err != nil {
		return dateRange{}, ErrWeekBadDates
	}
	e, err := parseDate(end)
	if err != nil {
		return dateRange{}, ErrWeekBadDates
	}
	if e.Before(s) {
		return dateRange{}, ErrWeekBadDates
	}
	return dateRange{start: s, end: e}, nil
}

// ────────────────────── Create ──────────────────────

func (s *weekService) Create(ctx context.Context, schoolYearID string, req *dto.CreateWeekRequest, callerID string) (*dto.WeekResponse, error) {
	rng, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	existing, err := s.loadYearWeeks(ctx, schoolYearID)
	if err != nil {
		return nil, err
	}
	if overlapping(existing, rng, "") {
		return nil, ErrWeekOverlap
	}

	week := model.Week{
		SchoolYearID: schoolYearID,
		WeekNumber:   len(existing) + 1,
		StartDate:    rng.start,
		EndDate:      rng.end,
		Status:       model.StatusActive,
		BaseModel:    model.BaseModel{CreatedBy: strPtr(callerID)},
	}

	err = inTx(ctx, s.repo, func(repo *repository.Repository) error {
		if err := repo.Week.Create(ctx, &week); err != nil {
			return err
		}
		return renumberWeeks(ctx, repo, schoolYearID)
	})
	if err != nil {
		s.logger.Error("create week failed", zap.String("school_year_id", schoolYearID), zap.Error(err))
		return nil, err
	}

	return s.GetByID(ctx, week.WeekID)
}

// ────────────────────── Generate ──────────────────────

func (s *weekService) Generate(ctx context.Context, schoolYearID string, req *dto.GenerateWeeksRequest, callerID string) ([]dto.WeekResponse, error) {
	start, err := parseDate(req.StartDate)
	if err != nil || req.Count <= 0 {
		return nil, ErrWeekBadDates
	}

	existing, err := s.loadYearWeeks(ctx, schoolYearID)
	if err != nil {
		return nil, err
	}

	weeks := make([]model.Week, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		rng := dateRange{start: start.AddDate(0, 0, 7*i), end: start.AddDate(0, 0, 7*i+6)}
		if overlapping(existing, rng, "") {
			return nil, ErrWeekOverlap
		}
		weeks = append(weeks, model.Week{
			SchoolYearID: schoolYearID,
			WeekNumber:   len(existing) + i + 1,
			StartDate:    rng.start,
			EndDate:      rng.end,
			Status:       model.StatusActive,
			BaseModel:    model.BaseModel{CreatedBy: strPtr(callerID)},
		})
	}

	err = inTx(ctx, s.repo, func(repo *repository.Repository) error {
		if err := repo.Week.BatchCreate(ctx, weeks); err != nil {
			return err
		}
		return renumberWeeks(ctx, repo, schoolYearID)
	})
	if err != nil {
		s.logger.Error("generate weeks failed", zap.String("school_year_id", schoolYearID), zap.Error(err))
		return nil, err
	}

	return s.List(ctx, schoolYearID, "")
}

// ────────────────────── Update ──────────────────────

func (s *weekService) Update(ctx context.Context, id string, req *dto.UpdateWeekRequest, callerID string) (*dto.WeekResponse, error) {
	week, err := s.getWeek(ctx, id)
	if err != nil {
		return nil, err
	}

	start, end := week.StartDate.Format(dto.DateLayout), week.EndDate.Format(dto.DateLayout)
	if req.StartDate != nil {
		start = *req.StartDate
	}
	if req.EndDate != nil {
		end = *req.EndDate
	}
	rng, err := parseDateRange(start, end)
	if err != nil {
		return nil, err
	}

	existing, err := s.loadYearWeeks(ctx, week.SchoolYearID)
	if err != nil {
		return nil, err
	}
	if overlapping(existing, rng, week.WeekID) {
		return nil, ErrWeekOverlap
	}

	datesChanged := !rng.start.Equal(civilDate(week.StartDate)) || !rng.end.Equal(civilDate(week.EndDate))
	week.StartDate, week.EndDate = rng.start, rng.end
	if req.Status != nil {
		week.Status = *req.Status
	}
	week.UpdatedBy = strPtr(callerID)

	err = inTx(ctx, s.repo, func(repo *repository.Repository) error {
		if err := repo.Week.Update(ctx, week); err != nil {
			return err
		}
		if !datesChanged {
			return nil
		}
		return renumberWeeks(ctx, repo, week.SchoolYearID)
	})
	if err != nil {
		s.logger.Error("update week failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.GetByID(ctx, id)
}

// ────────────────────── Delete ──────────────────────

func (s *weekService) Delete(ctx context.Context, id string) error {
	week, err := s.getWeek(ctx, id)
	if err != nil {
		return err
	}

	n, err := s.repo.TeachingRecord.CountByWeek(ctx, id)
	if err != nil {
		s.logger.Error("count week records failed", zap.String("id", id), zap.Error(err))
		return err
	}
	if n > 0 {
		return ErrWeekInUse
	}

	err = inTx(ctx, s.repo, func(repo *repository.Repository) error {
		if err := repo.Week.Delete(ctx, id); err != nil {
			return err
		}
		return renumberWeeks(ctx, repo, week.SchoolYearID)
	})
	if err != nil {
		s.logger.Error("delete week failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Read ──────────────────────

func (s *weekService) List(ctx context.Context, schoolYearID, status string) ([]dto.WeekResponse, error) {
	weeks, err := s.repo.Week.ListBySchoolYear(ctx, schoolYearID, status)
	if err != nil {
		s.logger.Error("list weeks failed", zap.String("school_year_id", schoolYearID), zap.Error(err))
		return nil, err
	}
	list := make([]dto.WeekResponse, 0, len(weeks))
	for i := range weeks {
		list = append(list, toWeekResponse(&weeks[i]))
	}
	return list, nil
}

func (s *weekService) GetByID(ctx context.Context, id string) (*dto.WeekResponse, error) {
	week, err := s.getWeek(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toWeekResponse(week)
	return &resp, nil
}

// ────────────────────── ICS ──────────────────────

func (s *weekService) ImportICS(ctx context.Context, schoolYearID string, reader io.Reader, callerID string) (*dto.ImportResult, error) {
	parsed, err := parseWeeksICS(reader)
	if err != nil {
		s.logger.Warn("parse ics failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrWeekICSInvalid, err)
	}

	existing, err := s.loadYearWeeks(ctx, schoolYearID)
	if err != nil {
		return nil, err
	}

	result := &dto.ImportResult{Total: len(parsed)}
	var accepted []model.Week
	for _, p := range parsed {
		if p.Err != "" {
			result.Failed++
			result.Errors = append(result.Errors, dto.ImportError{Row: p.Index, Reason: p.Err})
			continue
		}
		rng := dateRange{start: p.Start, end: p.End}
		if overlapping(existing, rng, "") || overlapping(accepted, rng, "") {
			result.Failed++
			result.Errors = append(result.Errors, dto.ImportError{Row: p.Index, Reason: ErrWeekOverlap.Error()})
			continue
		}
		accepted = append(accepted, model.Week{
			SchoolYearID: schoolYearID,
			WeekNumber:   len(existing) + len(accepted) + 1,
			StartDate:    p.Start,
			EndDate:      p.End,
			Status:       model.StatusActive,
			BaseModel:    model.BaseModel{CreatedBy: strPtr(callerID)},
		})
	}

	if len(accepted) > 0 {
		err = inTx(ctx, s.repo, func(repo *repository.Repository) error {
			if err := repo.Week.BatchCreate(ctx, accepted); err != nil {
				return err
			}
			return renumberWeeks(ctx, repo, schoolYearID)
		})
		if err != nil {
			s.logger.Error("import weeks failed", zap.String("school_year_id", schoolYearID), zap.Error(err))
			return nil, err
		}
	}
	result.Success = len(accepted)
	return result, nil
}

func (s *weekService) ExportICS(ctx context.Context, schoolYearID string) ([]byte, string, error) {
	year, err := s.repo.SchoolYear.GetByID(ctx, schoolYearID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrSchoolYearNotFound
		}
		return nil, "", err
	}
	weeks, err := s.repo.Week.ListBySchoolYear(ctx, schoolYearID, "")
	if err != nil {
		return nil, "", err
	}
	content := buildWeeksICS(year.Label, weeks, time.Now())
	return []byte(content), fmt.Sprintf("Tuan_%s.ics", year.Label), nil
}

// ── helpers ──

func (s *weekService) getWeek(ctx context.Context, id string) (*model.Week, error) {
	week, err := s.repo.Week.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWeekNotFound
		}
		s.logger.Error("load week failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return week, nil
}

func (s *weekService) loadYearWeeks(ctx context.Context, schoolYearID string) ([]model.Week, error) {
	if _, err := s.repo.SchoolYear.GetByID(ctx, schoolYearID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSchoolYearNotFound
		}
		return nil, err
	}
	weeks, err := s.repo.Week.ListBySchoolYear(ctx, schoolYearID, "")
	if err != nil {
		s.logger.Error("list weeks failed", zap.String("school_year_id", schoolYearID), zap.Error(err))
		return nil, err
	}
	return weeks, nil
}

func overlapping(weeks []model.Week, rng dateRange, exceptID string) bool {
	for _, w := range weeks {
		if exceptID != "" && w.WeekID == exceptID {
			continue
		}
		if rng.overlaps(dateRange{start: civilDate(w.StartDate), end: civilDate(w.EndDate)}) {
			return true
		}
	}
	return false
}

// renumberWeeks rewrites week numbers of one year to 1..n in start-date order
func renumberWeeks(ctx context.Context, repo *repository.Repository, schoolYearID string) error {
	weeks, err := repo.Week.ListBySchoolYear(ctx, schoolYearID, "")
	if err != nil {
		return err
	}
	for i, w := range weeks {
		if w.WeekNumber == i+1 {
			continue
		}
		if err := repo.Week.UpdateNumber(ctx, w.WeekID, i+1); err != nil {
			return err
		}
	}
	return nil
}

func toWeekResponse(w *model.Week) dto.WeekResponse {
	return dto.WeekResponse{
		ID:           w.WeekID,
		SchoolYearID: w.SchoolYearID,
		WeekNumber:   w.WeekNumber,
		StartDate:    w.StartDate.Format(dto.DateLayout),
		EndDate:      w.EndDate.Format(dto.DateLayout),
		Status:       w.Status,
	}
}
