package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"teaching-hours/backend/internal/dto"
	"teaching-hours/backend/internal/model"
	"teaching-hours/backend/internal/repository"
	apperrors "teaching-hours/backend/pkg/errors"
)

var (
	ErrClassNotFound = apperrors.New(apperrors.KindNotFound, "lớp không tồn tại")
	ErrClassExists   = apperrors.New(apperrors.KindConflict, "tên lớp đã tồn tại trong năm học")
	ErrClassBadGrade = apperrors.New(apperrors.KindBadInput, "khối lớp phải là 10, 11 hoặc 12")
	ErrClassInUse    = apperrors.New(apperrors.KindConflict, "lớp đang được sử dụng, không thể xóa")
)

// ClassService classes of a school year
type ClassService interface {
	Create(ctx context.Context, schoolYearID string, req *dto.CreateClassRequest, callerID string) (*dto.ClassResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ClassResponse, error)
	List(ctx context.Context, schoolYearID string, grade int) ([]dto.ClassResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateClassRequest, callerID string) (*dto.ClassResponse, error)
	Delete(ctx context.Context, id string) error
}

type classService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewClassService creates a ClassService
func NewClassService(repo *repository.Repository, logger *zap.Logger) ClassService {
	return &classService{repo: repo, logger: logger}
}

// GradeFromName derives the grade from the leading digits of a class name: "10A1" -> 10.
func GradeFromName(name string) (int, bool) {
	name = strings.TrimSpace(name)
	end := 0
	for end < len(name) && unicode.IsDigit(rune(name[end])) {
		end++
	}
	if end == 0 {
		return 0, false
	}
	grade, err := strconv.Atoi(name[:end])
	if err != nil || !validGrade(grade) {
		return 0, false
	}
	return grade, true
}

func validGrade(g int) bool { return g >= 10 && g <= 12 }

// ────────────────────── Create ──────────────────────

func (s *classService) Create(ctx context.Context, schoolYearID string, req *dto.CreateClassRequest, callerID string) (*dto.ClassResponse, error) {
	name := strings.TrimSpace(req.Name)
	grade := req.Grade
	if grade == 0 {
		derived, ok := GradeFromName(name)
		if !ok {
			return nil, ErrClassBadGrade
		}
		grade = derived
	}
	if !validGrade(grade) {
		return nil, ErrClassBadGrade
	}

	if _, err := s.repo.Class.GetByName(ctx, schoolYearID, name); err == nil {
		return nil, ErrClassExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	class := &model.Class{
		SchoolYearID: schoolYearID,
		Name:         name,
		Grade:        grade,
		Status:       model.StatusActive,
		BaseModel:    model.BaseModel{CreatedBy: strPtr(callerID)},
	}
	if err := s.repo.Class.Create(ctx, class); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrClassExists
		}
		s.logger.Error("create class failed", zap.String("name", name), zap.Error(err))
		return nil, err
	}

	resp := toClassResponse(class)
	return &resp, nil
}

// ────────────────────── Read ──────────────────────

func (s *classService) GetByID(ctx context.Context, id string) (*dto.ClassResponse, error) {
	class, err := s.getClass(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toClassResponse(class)
	return &resp, nil
}

func (s *classService) List(ctx context.Context, schoolYearID string, grade int) ([]dto.ClassResponse, error) {
	classes, err := s.repo.Class.ListBySchoolYear(ctx, schoolYearID, grade)
	if err != nil {
		s.logger.Error("list classes failed", zap.Error(err))
		return nil, err
	}
	list := make([]dto.ClassResponse, 0, len(classes))
	for i := range classes {
		list = append(list, toClassResponse(&classes[i]))
	}
	return list, nil
}

// ────────────────────── Update ──────────────────────

func (s *classService) Update(ctx context.Context, id string, req *dto.UpdateClassRequest, callerID string) (*dto.ClassResponse, error) {
	class, err := s.getClass(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name != class.Name {
			if other, err := s.repo.Class.GetByName(ctx, class.SchoolYearID, name); err == nil && other.ClassID != class.ClassID {
				return nil, ErrClassExists
			} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			class.Name = name
		}
	}
	if req.Grade != nil {
		if !validGrade(*req.Grade) {
			return nil, ErrClassBadGrade
		}
		class.Grade = *req.Grade
	}
	if req.Status != nil {
		class.Status = *req.Status
	}
	class.UpdatedBy = strPtr(callerID)

	if err := s.repo.Class.Update(ctx, class); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrClassExists
		}
		s.logger.Error("update class failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := toClassResponse(class)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *classService) Delete(ctx context.Context, id string) error {
	class, err := s.getClass(ctx, id)
	if err != nil {
		return err
	}

	n, err := s.repo.TeachingRecord.CountByClass(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrClassInUse
	}
	if _, err := s.repo.Teacher.GetByHomeroom(ctx, class.SchoolYearID, id); err == nil {
		return ErrClassInUse
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if err := s.repo.Class.Delete(ctx, id); err != nil {
		s.logger.Error("delete class failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *classService) getClass(ctx context.Context, id string) (*model.Class, error) {
	class, err := s.repo.Class.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		s.logger.Error("load class failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return class, nil
}

func toClassResponse(c *model.Class) dto.ClassResponse {
	return dto.ClassResponse{
		ID:           c.ClassID,
		SchoolYearID: c.SchoolYearID,
		Name:         c.Name,
		Grade:        c.Grade,
		Status:       c.Status,
	}
}
