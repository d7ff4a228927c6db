package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"teaching-hours/backend/internal/dto"
	"teaching-hours/backend/internal/model"
	"teaching-hours/backend/internal/repository"
	apperrors "teaching-hours/backend/pkg/errors"
)

var (
	ErrSubjectNotFound = apperrors.New(apperrors.KindNotFound, "môn học không tồn tại")
	ErrSubjectExists   = apperrors.New(apperrors.KindConflict, "tên môn học đã tồn tại trong năm học")
	ErrSubjectInUse    = apperrors.New(apperrors.KindConflict, "môn học đã có dữ liệu giờ dạy, không thể xóa")
)

// SubjectService subjects of a school year
type SubjectService interface {
	Create(ctx context.Context, schoolYearID string, req *dto.CreateSubjectRequest, callerID string) (*dto.SubjectResponse, error)
	GetByID(ctx context.Context, id string) (*dto.SubjectResponse, error)
	List(ctx context.Context, schoolYearID string) ([]dto.SubjectResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateSubjectRequest, callerID string) (*dto.SubjectResponse, error)
	Delete(ctx context.Context, id string) error
}

type subjectService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSubjectService creates a SubjectService
func NewSubjectService(repo *repository.Repository, logger *zap.Logger) SubjectService {
	return &subjectService{repo: repo, logger: logger}
}

func (s *subjectService) Create(ctx context.Context, schoolYearID string, req *dto.CreateSubjectRequest, callerID string) (*dto.SubjectResponse, error) {
	name := strings.TrimSpace(req.Name)
	if _, err := s.repo.Subject.GetByName(ctx, schoolYearID, name); err == nil {
		return nil, ErrSubjectExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	subject := &model.Subject{
		SchoolYearID: schoolYearID,
		Name:         name,
		Status:       model.StatusActive,
		BaseModel:    model.BaseModel{CreatedBy: strPtr(callerID)},
	}
	if err := s.repo.Subject.Create(ctx, subject); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrSubjectExists
		}
		s.logger.Error("create subject failed", zap.String("name", name), zap.Error(err))
		return nil, err
	}

	resp := toSubjectResponse(subject)
	return &resp, nil
}

func (s *subjectService) GetByID(ctx context.Context, id string) (*dto.SubjectResponse, error) {
	subject, err := s.getSubject(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toSubjectResponse(subject)
	return &resp, nil
}

func (s *subjectService) List(ctx context.Context, schoolYearID string) ([]dto.SubjectResponse, error) {
	subjects, err := s.repo.Subject.ListBySchoolYear(ctx, schoolYearID)
	if err != nil {
		s.logger.Error("list subjects failed", zap.Error(err))
		return nil, err
	}
	list := make([]dto.SubjectResponse, 0, len(subjects))
	for i := range subjects {
		list = append(list, toSubjectResponse(&subjects[i]))
	}
	return list, nil
}

func (s *subjectService) Update(ctx context.Context, id string, req *dto.UpdateSubjectRequest, callerID string) (*dto.SubjectResponse, error) {
	subject, err := s.getSubject(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name != subject.Name {
			if _, err := s.repo.Subject.GetByName(ctx, subject.SchoolYearID, name); err == nil {
				return nil, ErrSubjectExists
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			subject.Name = name
		}
	}
	if req.Status != nil {
		subject.Status = *req.Status
	}
	subject.UpdatedBy = strPtr(callerID)

	if err := s.repo.Subject.Update(ctx, subject); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrSubjectExists
		}
		s.logger.Error("update subject failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := toSubjectResponse(subject)
	return &resp, nil
}

func (s *subjectService) Delete(ctx context.Context, id string) error {
	if _, err := s.getSubject(ctx, id); err != nil {
		return err
	}

	n, err := s.repo.TeachingRecord.CountBySubject(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrSubjectInUse
	}

	if err := s.repo.Subject.Delete(ctx, id); err != nil {
		s.logger.Error("delete subject failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *subjectService) getSubject(ctx context.Context, id string) (*model.Subject, error) {
	subject, err := s.repo.Subject.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		s.logger.Error("load subject failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return subject, nil
}

func toSubjectResponse(sub *model.Subject) dto.SubjectResponse {
	return dto.SubjectResponse{
		ID:           sub.SubjectID,
		SchoolYearID: sub.SchoolYearID,
		Name:         sub.Name,
		Status:       sub.Status,
	}
}
