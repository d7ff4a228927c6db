package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"teaching-hours/backend/internal/dto"
	"teaching-hours/backend/internal/model"
	"teaching-hours/backend/internal/report"
	"teaching-hours/backend/internal/repository"
	apperrors "teaching-hours/backend/pkg/errors"
)

var (
	ErrRecordNotFound   = apperrors.New(apperrors.KindNotFound, "bản ghi giờ dạy không tồn tại")
	ErrRecordDuplicate  = apperrors.New(apperrors.KindConflict, "giáo viên đã có bản ghi cho môn, lớp và tuần này")
	ErrRecordForbidden  = apperrors.New(apperrors.KindForbidden, "chỉ được thao tác trên giờ dạy của chính mình")
	ErrRecordBadPeriods = apperrors.New(apperrors.KindBadInput, "số tiết phải từ 1 đến 20")
	ErrRecordBadType    = apperrors.New(apperrors.KindBadInput, "loại giờ dạy không hợp lệ")
	ErrRecordBadRefs    = apperrors.New(apperrors.KindBadInput, "giáo viên, tuần, môn và lớp phải thuộc cùng một năm học")
	ErrRecordWeekGone   = apperrors.New(apperrors.KindBadInput, "tuần không tồn tại")
)

const (
	minPeriods = 1
	maxPeriods = 20
)

// TeachingRecordService weekly periods taught
type TeachingRecordService interface {
	Create(ctx context.Context, req *dto.CreateTeachingRecordRequest, caller Caller) (*dto.TeachingRecordResponse, error)
	BatchCreate(ctx context.Context, req *dto.BatchCreateTeachingRecordRequest, caller Caller) (*dto.BatchCreateResult, error)
	GetByID(ctx context.Context, id string, caller Caller) (*dto.TeachingRecordResponse, error)
	List(ctx context.Context, req *dto.TeachingRecordListRequest, caller Caller) ([]dto.TeachingRecordResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateTeachingRecordRequest, caller Caller) (*dto.TeachingRecordResponse, error)
	Delete(ctx context.Context, id string, caller Caller) error
}

type teachingRecordService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTeachingRecordService creates a TeachingRecordService
func NewTeachingRecordService(repo *repository.Repository, logger *zap.Logger) TeachingRecordService {
	return &teachingRecordService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *teachingRecordService) Create(ctx context.Context, req *dto.CreateTeachingRecordRequest, caller Caller) (*dto.TeachingRecordResponse, error) {
	if !caller.IsAdmin() && caller.TeacherID != req.TeacherID {
		return nil, ErrRecordForbidden
	}
	record, err := s.buildRecord(ctx, req, caller.UserID)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.TeachingRecord.GetByTuple(ctx, record.TeacherID, record.WeekID, record.SubjectID, record.ClassID); err == nil {
		return nil, ErrRecordDuplicate
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := s.repo.TeachingRecord.Create(ctx, record); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrRecordDuplicate
		}
		s.logger.Error("create teaching record failed",
			zap.String("teacher_id", record.TeacherID), zap.String("week_id", record.WeekID), zap.Error(err))
		return nil, err
	}

	return s.load(ctx, record.RecordID)
}

// buildRecord validates the request and resolves the school year from the week
func (s *teachingRecordService) buildRecord(ctx context.Context, req *dto.CreateTeachingRecordRequest, callerID string) (*model.TeachingRecord, error) {
	if req.Periods < minPeriods || req.Periods > maxPeriods {
		return nil, ErrRecordBadPeriods
	}
	recordType := strings.TrimSpace(req.RecordType)
	if recordType == "" {
		recordType = model.RecordTypeTeaching
	}
	if !report.KnownType(report.RecordType(recordType)) {
		return nil, ErrRecordBadType
	}

	week, err := s.repo.Week.GetByID(ctx, req.WeekID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordWeekGone
		}
		return nil, err
	}
	yearID := week.SchoolYearID

	teacher, err := s.repo.Teacher.GetByID(ctx, req.TeacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeacherNotFound
		}
		return nil, err
	}
	subject, err := s.repo.Subject.GetByID(ctx, req.SubjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		return nil, err
	}
	class, err := s.repo.Class.GetByID(ctx, req.ClassID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	if teacher.SchoolYearID != yearID || subject.SchoolYearID != yearID || class.SchoolYearID != yearID {
		return nil, ErrRecordBadRefs
	}

	return &model.TeachingRecord{
		TeacherID:    req.TeacherID,
		WeekID:       req.WeekID,
		SubjectID:    req.SubjectID,
		ClassID:      req.ClassID,
		SchoolYearID: yearID,
		Periods:      req.Periods,
		RecordType:   recordType,
		Notes:        strings.TrimSpace(req.Notes),
		BaseModel:    model.BaseModel{CreatedBy: strPtr(callerID)},
	}, nil
}

// ────────────────────── BatchCreate ──────────────────────

// BatchCreate creates each row independently; rejected rows are reported, the others are kept.
func (s *teachingRecordService) BatchCreate(ctx context.Context, req *dto.BatchCreateTeachingRecordRequest, caller Caller) (*dto.BatchCreateResult, error) {
	result := &dto.BatchCreateResult{Created: make([]dto.TeachingRecordResponse, 0, len(req.Records))}
	for i := range req.Records {
		created, err := s.Create(ctx, &req.Records[i], caller)
		if err != nil {
			if apperrors.KindOf(err) == apperrors.KindSystem {
				return nil, err
			}
			msg, _ := apperrors.MessageOf(err)
			result.Errors = append(result.Errors, dto.ImportError{Row: i + 1, Reason: msg})
			continue
		}
		result.Created = append(result.Created, *created)
	}
	return result, nil
}

// ────────────────────── Read ──────────────────────

func (s *teachingRecordService) GetByID(ctx context.Context, id string, caller Caller) (*dto.TeachingRecordResponse, error) {
	record, err := s.getRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canTouch(caller, record) {
		return nil, ErrRecordForbidden
	}
	resp := toTeachingRecordResponse(record)
	return &resp, nil
}

// List non-admin callers only see their own records
func (s *teachingRecordService) List(ctx context.Context, req *dto.TeachingRecordListRequest, caller Caller) ([]dto.TeachingRecordResponse, int64, error) {
	filter := repository.RecordFilter{
		SchoolYearID: req.SchoolYearID,
		TeacherID:    req.TeacherID,
		WeekID:       req.WeekID,
		RecordType:   req.RecordType,
	}
	if !caller.IsAdmin() {
		if caller.TeacherID == "" {
			return []dto.TeachingRecordResponse{}, 0, nil
		}
		filter.TeacherID = caller.TeacherID
	}

	records, total, err := s.repo.TeachingRecord.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list teaching records failed", zap.Error(err))
		return nil, 0, err
	}
	list := make([]dto.TeachingRecordResponse, 0, len(records))
	for i := range records {
		list = append(list, toTeachingRecordResponse(&records[i]))
	}
	return list, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *teachingRecordService) Update(ctx context.Context, id string, req *dto.UpdateTeachingRecordRequest, caller Caller) (*dto.TeachingRecordResponse, error) {
	record, err := s.getRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canTouch(caller, record) {
		return nil, ErrRecordForbidden
	}

	if req.Periods != nil {
		if *req.Periods < minPeriods || *req.Periods > maxPeriods {
			return nil, ErrRecordBadPeriods
		}
		record.Periods = *req.Periods
	}
	if req.RecordType != nil {
		if !report.KnownType(report.RecordType(*req.RecordType)) {
			return nil, ErrRecordBadType
		}
		record.RecordType = *req.RecordType
	}
	if req.Notes != nil {
		record.Notes = strings.TrimSpace(*req.Notes)
	}
	record.UpdatedBy = strPtr(caller.UserID)

	if err := s.repo.TeachingRecord.Update(ctx, record); err != nil {
		s.logger.Error("update teaching record failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := toTeachingRecordResponse(record)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *teachingRecordService) Delete(ctx context.Context, id string, caller Caller) error {
	record, err := s.getRecord(ctx, id)
	if err != nil {
		return err
	}
	if !canTouch(caller, record) {
		return ErrRecordForbidden
	}

	if err := s.repo.TeachingRecord.Delete(ctx, id); err != nil {
		s.logger.Error("delete teaching record failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── helpers ──

func canTouch(caller Caller, record *model.TeachingRecord) bool {
	return caller.IsAdmin() || (caller.TeacherID != "" && caller.TeacherID == record.TeacherID)
}

func (s *teachingRecordService) getRecord(ctx context.Context, id string) (*model.TeachingRecord, error) {
	record, err := s.repo.TeachingRecord.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		s.logger.Error("load teaching record failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return record, nil
}

func (s *teachingRecordService) load(ctx context.Context, id string) (*dto.TeachingRecordResponse, error) {
	record, err := s.getRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toTeachingRecordResponse(record)
	return &resp, nil
}

func toTeachingRecordResponse(r *model.TeachingRecord) dto.TeachingRecordResponse {
	resp := dto.TeachingRecordResponse{
		ID:           r.RecordID,
		TeacherID:    r.TeacherID,
		WeekID:       r.WeekID,
		SubjectID:    r.SubjectID,
		ClassID:      r.ClassID,
		SchoolYearID: r.SchoolYearID,
		Periods:      r.Periods,
		RecordType:   r.RecordType,
		Notes:        r.Notes,
		CreatedBy:    derefStr(r.CreatedBy),
		CreatedAt:    formatTime(r.CreatedAt),
	}
	if r.Teacher != nil {
		resp.TeacherName = r.Teacher.Name
	}
	if r.Week != nil {
		resp.WeekNumber = r.Week.WeekNumber
	}
	if r.Subject != nil {
		resp.SubjectName = r.Subject.Name
	}
	if r.Class != nil {
		resp.ClassName = r.Class.Name
	}
	return resp
}
