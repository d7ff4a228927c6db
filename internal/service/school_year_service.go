package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"teaching-hours/backend/internal/dto"
	"teaching-hours/backend/internal/model"
	"teaching-hours/backend/internal/report"
	"teaching-hours/backend/internal/repository"
	apperrors "teaching-hours/backend/pkg/errors"
)

var (
	ErrSchoolYearNotFound  = apperrors.New(apperrors.KindNotFound, "năm học không tồn tại")
	ErrNoActiveSchoolYear  = apperrors.New(apperrors.KindNotFound, "chưa có năm học đang hoạt động")
	ErrSchoolYearBadLabel  = apperrors.New(apperrors.KindBadInput, "năm học phải có dạng YYYY-YYYY, ví dụ 2024-2025")
	ErrSchoolYearExists    = apperrors.New(apperrors.KindConflict, "năm học đã tồn tại")
	ErrSchoolYearArchived  = apperrors.New(apperrors.KindConflict, "năm học đã được lưu trữ")
	ErrRolloverNeedClasses = apperrors.New(apperrors.KindBadInput, "sao chép giáo viên cần sao chép cả lớp và môn học")
)

// SchoolYearService school year lifecycle
type SchoolYearService interface {
	Create(ctx context.Context, req *dto.CreateSchoolYearRequest, callerID string) (*dto.SchoolYearResponse, error)
	List(ctx context.Context) ([]dto.SchoolYearResponse, error)
	GetByID(ctx context.Context, id string) (*dto.SchoolYearResponse, error)
	GetActive(ctx context.Context) (*dto.SchoolYearResponse, error)
	// Resolve the year with the given id, or the active year when id is empty
	Resolve(ctx context.Context, id string) (*model.SchoolYear, error)
	Archive(ctx context.Context, id string, callerID string) error
	// Rollover archives the active year and opens the next label, copying reference data
	Rollover(ctx context.Context, req *dto.RolloverRequest, callerID string) (*dto.RolloverResponse, error)
	// Delete removes the year with all its records, weeks, teachers, classes and subjects
	Delete(ctx context.Context, id string) error
}

type schoolYearService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewSchoolYearService creates a SchoolYearService
func NewSchoolYearService(repo *repository.Repository, logger *zap.Logger) SchoolYearService {
	return &schoolYearService{repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── Create ──────────────────────

func (s *schoolYearService) Create(ctx context.Context, req *dto.CreateSchoolYearRequest, callerID string) (*dto.SchoolYearResponse, error) {
	if _, _, err := report.ParseSchoolYearLabel(req.Label); err != nil {
		return nil, ErrSchoolYearBadLabel
	}

	if _, err := s.repo.SchoolYear.GetByLabel(ctx, req.Label); err == nil {
		return nil, ErrSchoolYearExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	year := &model.SchoolYear{
		Label:     req.Label,
		Status:    model.StatusActive,
		BaseModel: model.BaseModel{CreatedBy: strPtr(callerID)},
	}
	if err := s.repo.SchoolYear.Create(ctx, year); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrSchoolYearExists
		}
		s.logger.Error("create school year failed", zap.String("label", req.Label), zap.Error(err))
		return nil, err
	}

	return toSchoolYearResponse(year), nil
}

// ────────────────────── Read ──────────────────────

func (s *schoolYearService) List(ctx context.Context) ([]dto.SchoolYearResponse, error) {
	years, err := s.repo.SchoolYear.List(ctx)
	if err != nil {
		s.logger.Error("list school years failed", zap.Error(err))
		return nil, err
	}
	list := make([]dto.SchoolYearResponse, 0, len(years))
	for i := range years {
		list = append(list, *toSchoolYearResponse(&years[i]))
	}
	return list, nil
}

func (s *schoolYearService) GetByID(ctx context.Context, id string) (*dto.SchoolYearResponse, error) {
	year, err := s.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	return toSchoolYearResponse(year), nil
}

func (s *schoolYearService) GetActive(ctx context.Context) (*dto.SchoolYearResponse, error) {
	year, err := s.Resolve(ctx, "")
	if err != nil {
		return nil, err
	}
	return toSchoolYearResponse(year), nil
}

func (s *schoolYearService) Resolve(ctx context.Context, id string) (*model.SchoolYear, error) {
	if id == "" {
		year, err := s.repo.SchoolYear.GetActive(ctx)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNoActiveSchoolYear
			}
			s.logger.Error("load active school year failed", zap.Error(err))
			return nil, err
		}
		return year, nil
	}

	year, err := s.repo.SchoolYear.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSchoolYearNotFound
		}
		s.logger.Error("load school year failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return year, nil
}

// ────────────────────── Archive ──────────────────────

func (s *schoolYearService) Archive(ctx context.Context, id string, callerID string) error {
	year, err := s.Resolve(ctx, id)
	if err != nil {
		return err
	}
	if year.Status == model.StatusArchived {
		return ErrSchoolYearArchived
	}

	s.markArchived(year, callerID)
	if err := s.repo.SchoolYear.Update(ctx, year); err != nil {
		s.logger.Error("archive school year failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *schoolYearService) markArchived(year *model.SchoolYear, callerID string) {
	now := s.now()
	year.Status = model.StatusArchived
	year.EndedAt = &now
	year.UpdatedBy = strPtr(callerID)
}

// ────────────────────── Rollover ──────────────────────

func (s *schoolYearService) Rollover(ctx context.Context, req *dto.RolloverRequest, callerID string) (*dto.RolloverResponse, error) {
	if req.CopyTeachers && (!req.CopyClasses || !req.CopySubjects) {
		return nil, ErrRolloverNeedClasses
	}

	current, err := s.Resolve(ctx, "")
	if err != nil {
		return nil, err
	}
	nextLabel, err := report.NextSchoolYearLabel(current.Label)
	if err != nil {
		return nil, ErrSchoolYearBadLabel
	}
	if _, err := s.repo.SchoolYear.GetByLabel(ctx, nextLabel); err == nil {
		return nil, ErrSchoolYearExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("begin tx failed", zap.Error(err))
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()
	txRepo := s.repo.WithTx(tx)

	resp, err := s.rollover(ctx, txRepo, current, nextLabel, req, callerID)
	if err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("rollover failed, rolled back", zap.String("from", current.Label), zap.Error(err))
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("commit tx failed", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("school year rolled over",
		zap.String("from", current.Label), zap.String("to", nextLabel),
		zap.Int("classes", resp.Classes), zap.Int("subjects", resp.Subjects), zap.Int("teachers", resp.Teachers))
	return resp, nil
}

func (s *schoolYearService) rollover(ctx context.Context, repo *repository.Repository, current *model.SchoolYear, nextLabel string, req *dto.RolloverRequest, callerID string) (*dto.RolloverResponse, error) {
	s.markArchived(current, callerID)
	if err := repo.SchoolYear.Update(ctx, current); err != nil {
		return nil, err
	}

	next := &model.SchoolYear{
		Label:     nextLabel,
		Status:    model.StatusActive,
		BaseModel: model.BaseModel{CreatedBy: strPtr(callerID)},
	}
	if err := repo.SchoolYear.Create(ctx, next); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrSchoolYearExists
		}
		return nil, err
	}

	resp := &dto.RolloverResponse{
		Archived: *toSchoolYearResponse(current),
		Created:  *toSchoolYearResponse(next),
	}

	classMap := make(map[string]model.Class)
	if req.CopyClasses {
		classes, err := repo.Class.ListBySchoolYear(ctx, current.SchoolYearID, 0)
		if err != nil {
			return nil, err
		}
		for _, c := range classes {
			copied := model.Class{
				SchoolYearID: next.SchoolYearID,
				Name:         c.Name,
				Grade:        c.Grade,
				Status:       model.StatusActive,
				BaseModel:    model.BaseModel{CreatedBy: strPtr(callerID)},
			}
			if err := repo.Class.Create(ctx, &copied); err != nil {
				return nil, err
			}
			classMap[c.ClassID] = copied
		}
		resp.Classes = len(classMap)
	}

	subjectMap := make(map[string]model.Subject)
	if req.CopySubjects {
		subjects, err := repo.Subject.ListBySchoolYear(ctx, current.SchoolYearID)
		if err != nil {
			return nil, err
		}
		for _, sub := range subjects {
			copied := model.Subject{
				SchoolYearID: next.SchoolYearID,
				Name:         sub.Name,
				Status:       model.StatusActive,
				BaseModel:    model.BaseModel{CreatedBy: strPtr(callerID)},
			}
			if err := repo.Subject.Create(ctx, &copied); err != nil {
				return nil, err
			}
			subjectMap[sub.SubjectID] = copied
		}
		resp.Subjects = len(subjectMap)
	}

	if req.CopyTeachers {
		teachers, err := repo.Teacher.ListBySchoolYear(ctx, current.SchoolYearID)
		if err != nil {
			return nil, err
		}
		// phone and user links are unique, move them to the new profiles
		if err := repo.Teacher.ClearContacts(ctx, current.SchoolYearID); err != nil {
			return nil, err
		}
		for _, t := range teachers {
			homeroom, ok := classMap[t.HomeroomClassID]
			if !ok {
				continue
			}
			copied := model.Teacher{
				SchoolYearID:    next.SchoolYearID,
				Name:            t.Name,
				Phone:           t.Phone,
				UserID:          t.UserID,
				HomeroomClassID: homeroom.ClassID,
				Status:          model.StatusActive,
				BaseModel:       model.BaseModel{CreatedBy: strPtr(callerID)},
			}
			for _, sub := range t.Subjects {
				if mapped, ok := subjectMap[sub.SubjectID]; ok {
					copied.Subjects = append(copied.Subjects, mapped)
				}
			}
			if err := repo.Teacher.Create(ctx, &copied); err != nil {
				return nil, err
			}
			resp.Teachers++
		}
	}

	return resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *schoolYearService) Delete(ctx context.Context, id string) error {
	// never resolve the active year implicitly for a destructive call
	if id == "" {
		return ErrSchoolYearNotFound
	}
	year, err := s.Resolve(ctx, id)
	if err != nil {
		return err
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("begin tx failed", zap.Error(err))
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()
	txRepo := s.repo.WithTx(tx)

	// children first, foreign keys point upward
	steps := []func(context.Context, string) error{
		txRepo.TeachingRecord.DeleteBySchoolYear,
		txRepo.Teacher.DeleteBySchoolYear,
		txRepo.Week.DeleteBySchoolYear,
		txRepo.Class.DeleteBySchoolYear,
		txRepo.Subject.DeleteBySchoolYear,
		txRepo.SchoolYear.Delete,
	}
	for _, step := range steps {
		if err := step(ctx, year.SchoolYearID); err != nil {
			if tx != nil {
				tx.Rollback()
			}
			s.logger.Error("delete school year failed, rolled back", zap.String("id", id), zap.Error(err))
			return err
		}
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("commit tx failed", zap.Error(err))
			return err
		}
	}

	s.logger.Info("school year deleted", zap.String("id", id), zap.String("label", year.Label))
	return nil
}

func toSchoolYearResponse(year *model.SchoolYear) *dto.SchoolYearResponse {
	resp := &dto.SchoolYearResponse{
		ID:        year.SchoolYearID,
		Label:     year.Label,
		Status:    year.Status,
		CreatedAt: formatTime(year.CreatedAt),
	}
	if year.EndedAt != nil {
		resp.EndedAt = formatTime(*year.EndedAt)
	}
	return resp
}
