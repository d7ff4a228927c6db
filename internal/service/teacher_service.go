package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"teaching-hours/backend/internal/dto"
	"teaching-hours/backend/internal/model"
	"teaching-hours/backend/internal/repository"
	apperrors "teaching-hours/backend/pkg/errors"
)

var (
	ErrTeacherNotFound      = apperrors.New(apperrors.KindNotFound, "giáo viên không tồn tại")
	ErrTeacherPhoneExists   = apperrors.New(apperrors.KindConflict, "số điện thoại đã được sử dụng")
	ErrTeacherUserLinked    = apperrors.New(apperrors.KindConflict, "tài khoản đã được liên kết với giáo viên khác")
	ErrTeacherUserNotFound  = apperrors.New(apperrors.KindBadInput, "tài khoản liên kết không tồn tại")
	ErrTeacherHomeroomTaken = apperrors.New(apperrors.KindConflict, "lớp đã có giáo viên chủ nhiệm")
	ErrTeacherBadHomeroom   = apperrors.New(apperrors.KindBadInput, "lớp chủ nhiệm không thuộc năm học")
	ErrTeacherBadSubjects   = apperrors.New(apperrors.KindBadInput, "môn học không hợp lệ hoặc không thuộc năm học")
	ErrTeacherInUse         = apperrors.New(apperrors.KindConflict, "giáo viên đã có dữ liệu giờ dạy, không thể xóa")
)

// ImportTeacherRow one parsed roster row
type ImportTeacherRow struct {
	Row      int
	Name     string
	Phone    string
	Homeroom string
	Subjects []string
}

// TeacherService teacher profiles of a school year
type TeacherService interface {
	Create(ctx context.Context, schoolYearID string, req *dto.CreateTeacherRequest, callerID string) (*dto.TeacherResponse, error)
	GetByID(ctx context.Context, id string) (*dto.TeacherResponse, error)
	List(ctx context.Context, schoolYearID string, req *dto.TeacherListRequest) ([]dto.TeacherResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateTeacherRequest, callerID string) (*dto.TeacherResponse, error)
	Delete(ctx context.Context, id string) error
	ParseImportFile(reader io.Reader) ([]ImportTeacherRow, error)
	ImportTeachers(ctx context.Context, schoolYearID string, rows []ImportTeacherRow, callerID string) (*dto.ImportResult, error)
}

type teacherService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTeacherService creates a TeacherService
func NewTeacherService(repo *repository.Repository, logger *zap.Logger) TeacherService {
	return &teacherService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *teacherService) Create(ctx context.Context, schoolYearID string, req *dto.CreateTeacherRequest, callerID string) (*dto.TeacherResponse, error) {
	if err := s.checkHomeroom(ctx, schoolYearID, req.HomeroomClassID, ""); err != nil {
		return nil, err
	}
	phone := strings.TrimSpace(req.Phone)
	if err := s.checkPhone(ctx, phone, ""); err != nil {
		return nil, err
	}
	if err := s.checkUser(ctx, req.UserID, ""); err != nil {
		return nil, err
	}
	subjects, err := s.loadSubjects(ctx, schoolYearID, req.SubjectIDs)
	if err != nil {
		return nil, err
	}

	teacher := &model.Teacher{
		SchoolYearID:    schoolYearID,
		Name:            strings.TrimSpace(req.Name),
		Phone:           strPtr(phone),
		UserID:          strPtr(req.UserID),
		HomeroomClassID: req.HomeroomClassID,
		Status:          model.StatusActive,
		Subjects:        subjects,
		BaseModel:       model.BaseModel{CreatedBy: strPtr(callerID)},
	}
	if err := s.repo.Teacher.Create(ctx, teacher); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.New(apperrors.KindConflict, "thông tin giáo viên bị trùng")
		}
		s.logger.Error("create teacher failed", zap.String("name", teacher.Name), zap.Error(err))
		return nil, err
	}

	return s.GetByID(ctx, teacher.TeacherID)
}

// ────────────────────── Read ──────────────────────

func (s *teacherService) GetByID(ctx context.Context, id string) (*dto.TeacherResponse, error) {
	teacher, err := s.getTeacher(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toTeacherResponse(teacher)
	return &resp, nil
}

func (s *teacherService) List(ctx context.Context, schoolYearID string, req *dto.TeacherListRequest) ([]dto.TeacherResponse, int64, error) {
	teachers, total, err := s.repo.Teacher.List(ctx, schoolYearID, strings.TrimSpace(req.Keyword), req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list teachers failed", zap.Error(err))
		return nil, 0, err
	}
	list := make([]dto.TeacherResponse, 0, len(teachers))
	for i := range teachers {
		list = append(list, toTeacherResponse(&teachers[i]))
	}
	return list, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *teacherService) Update(ctx context.Context, id string, req *dto.UpdateTeacherRequest, callerID string) (*dto.TeacherResponse, error) {
	teacher, err := s.getTeacher(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		teacher.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		phone := strings.TrimSpace(*req.Phone)
		if err := s.checkPhone(ctx, phone, teacher.TeacherID); err != nil {
			return nil, err
		}
		teacher.Phone = strPtr(phone)
	}
	if req.UserID != nil {
		if err := s.checkUser(ctx, *req.UserID, teacher.TeacherID); err != nil {
			return nil, err
		}
		teacher.UserID = strPtr(*req.UserID)
	}
	if req.HomeroomClassID != nil && *req.HomeroomClassID != teacher.HomeroomClassID {
		if err := s.checkHomeroom(ctx, teacher.SchoolYearID, *req.HomeroomClassID, teacher.TeacherID); err != nil {
			return nil, err
		}
		teacher.HomeroomClassID = *req.HomeroomClassID
		teacher.HomeroomClass = nil
	}
	if req.Status != nil {
		teacher.Status = *req.Status
	}

	var subjects []model.Subject
	if req.SubjectIDs != nil {
		if subjects, err = s.loadSubjects(ctx, teacher.SchoolYearID, req.SubjectIDs); err != nil {
			return nil, err
		}
	}
	teacher.UpdatedBy = strPtr(callerID)

	err = inTx(ctx, s.repo, func(repo *repository.Repository) error {
		if err := repo.Teacher.Update(ctx, teacher); err != nil {
			return err
		}
		if subjects != nil {
			return repo.Teacher.ReplaceSubjects(ctx, teacher, subjects)
		}
		return nil
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.New(apperrors.KindConflict, "thông tin giáo viên bị trùng")
		}
		s.logger.Error("update teacher failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.GetByID(ctx, id)
}

// ────────────────────── Delete ──────────────────────

func (s *teacherService) Delete(ctx context.Context, id string) error {
	if _, err := s.getTeacher(ctx, id); err != nil {
		return err
	}

	n, err := s.repo.TeachingRecord.CountByTeacher(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrTeacherInUse
	}

	if err := s.repo.Teacher.Delete(ctx, id); err != nil {
		s.logger.Error("delete teacher failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── ParseImportFile ──────────────────────

const maxImportRows = 500

var (
	ErrImportNoData      = apperrors.New(apperrors.KindBadInput, "tệp Excel không có dòng dữ liệu (dòng đầu là tiêu đề)")
	ErrImportTooManyRows = apperrors.New(apperrors.KindBadInput, fmt.Sprintf("số dòng vượt quá giới hạn %d", maxImportRows))
	ErrImportBadHeader   = apperrors.New(apperrors.KindBadInput, "thiếu cột bắt buộc (Họ và tên / Lớp chủ nhiệm / Môn)")
)

// ParseImportFile reads the first sheet of a roster workbook. Columns may come in any order.
func (s *teacherService) ParseImportFile(reader io.Reader) ([]ImportTeacherRow, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindBadInput, "không đọc được tệp Excel", err)
	}
	defer f.Close()

	excelRows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindBadInput, "không đọc được trang tính", err)
	}
	if len(excelRows) < 2 {
		return nil, ErrImportNoData
	}

	colIndex := parseHeaderIndex(excelRows[0])
	if colIndex["name"] < 0 || colIndex["homeroom"] < 0 || colIndex["subjects"] < 0 {
		return nil, ErrImportBadHeader
	}

	cell := func(row []string, key string) string {
		if idx := colIndex[key]; idx >= 0 && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	var rows []ImportTeacherRow
	for i := 1; i < len(excelRows); i++ {
		row := excelRows[i]
		item := ImportTeacherRow{
			Row:      i + 1,
			Name:     cell(row, "name"),
			Phone:    cell(row, "phone"),
			Homeroom: cell(row, "homeroom"),
			Subjects: splitNames(cell(row, "subjects")),
		}
		if item.Name == "" && item.Phone == "" && item.Homeroom == "" && len(item.Subjects) == 0 {
			continue
		}
		rows = append(rows, item)
	}

	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	if len(rows) > maxImportRows {
		return nil, ErrImportTooManyRows
	}
	return rows, nil
}

// parseHeaderIndex maps column keys to header positions, -1 when absent
func parseHeaderIndex(header []string) map[string]int {
	idx := map[string]int{"name": -1, "phone": -1, "homeroom": -1, "subjects": -1}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "họ và tên", "họ tên", "name":
			idx["name"] = i
		case "số điện thoại", "sđt", "phone":
			idx["phone"] = i
		case "lớp chủ nhiệm", "chủ nhiệm", "homeroom":
			idx["homeroom"] = i
		case "môn", "môn dạy", "môn học", "subjects":
			idx["subjects"] = i
		}
	}
	return idx
}

func splitNames(s string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' }) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ────────────────────── ImportTeachers ──────────────────────

// ImportTeachers validates every row first, then writes the valid ones in one transaction.
func (s *teacherService) ImportTeachers(ctx context.Context, schoolYearID string, rows []ImportTeacherRow, callerID string) (*dto.ImportResult, error) {
	resp := &dto.ImportResult{Total: len(rows)}
	fail := func(row int, reason string) {
		resp.Failed++
		resp.Errors = append(resp.Errors, dto.ImportError{Row: row, Reason: reason})
	}

	classes, err := s.repo.Class.ListBySchoolYear(ctx, schoolYearID, 0)
	if err != nil {
		return nil, err
	}
	classByName := make(map[string]model.Class, len(classes))
	for _, c := range classes {
		classByName[strings.ToLower(c.Name)] = c
	}
	subjects, err := s.repo.Subject.ListBySchoolYear(ctx, schoolYearID)
	if err != nil {
		return nil, err
	}
	subjectByName := make(map[string]model.Subject, len(subjects))
	for _, sub := range subjects {
		subjectByName[strings.ToLower(sub.Name)] = sub
	}

	var valid []*model.Teacher
	seenPhone := make(map[string]bool)
	seenHomeroom := make(map[string]bool)

rows:
	for _, row := range rows {
		if row.Name == "" || row.Homeroom == "" || len(row.Subjects) == 0 {
			fail(row.Row, "thiếu thông tin bắt buộc")
			continue
		}
		class, ok := classByName[strings.ToLower(row.Homeroom)]
		if !ok {
			fail(row.Row, fmt.Sprintf("lớp không tồn tại: %s", row.Homeroom))
			continue
		}
		if seenHomeroom[class.ClassID] {
			fail(row.Row, fmt.Sprintf("lớp %s bị trùng giáo viên chủ nhiệm", class.Name))
			continue
		}
		if _, err := s.repo.Teacher.GetByHomeroom(ctx, schoolYearID, class.ClassID); err == nil {
			fail(row.Row, fmt.Sprintf("lớp %s đã có giáo viên chủ nhiệm", class.Name))
			continue
		}
		if row.Phone != "" {
			if seenPhone[row.Phone] {
				fail(row.Row, fmt.Sprintf("số điện thoại bị trùng: %s", row.Phone))
				continue
			}
			if _, err := s.repo.Teacher.GetByPhone(ctx, row.Phone); err == nil {
				fail(row.Row, fmt.Sprintf("số điện thoại đã được sử dụng: %s", row.Phone))
				continue
			}
		}

		var linked []model.Subject
		for _, name := range row.Subjects {
			sub, ok := subjectByName[strings.ToLower(name)]
			if !ok {
				fail(row.Row, fmt.Sprintf("môn học không tồn tại: %s", name))
				continue rows
			}
			linked = append(linked, sub)
		}

		seenHomeroom[class.ClassID] = true
		if row.Phone != "" {
			seenPhone[row.Phone] = true
		}
		valid = append(valid, &model.Teacher{
			SchoolYearID:    schoolYearID,
			Name:            row.Name,
			Phone:           strPtr(row.Phone),
			HomeroomClassID: class.ClassID,
			Status:          model.StatusActive,
			Subjects:        linked,
			BaseModel:       model.BaseModel{CreatedBy: strPtr(callerID)},
		})
	}

	if len(valid) == 0 {
		return resp, nil
	}

	err = inTx(ctx, s.repo, func(repo *repository.Repository) error {
		for _, t := range valid {
			if err := repo.Teacher.Create(ctx, t); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("import teachers rolled back", zap.Int("rows", len(valid)), zap.Error(err))
		return nil, err
	}
	resp.Success = len(valid)

	return resp, nil
}

// ── helpers ──

func (s *teacherService) getTeacher(ctx context.Context, id string) (*model.Teacher, error) {
	teacher, err := s.repo.Teacher.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeacherNotFound
		}
		s.logger.Error("load teacher failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return teacher, nil
}

// checkHomeroom the class belongs to the year and has no other homeroom teacher
func (s *teacherService) checkHomeroom(ctx context.Context, schoolYearID, classID, selfID string) error {
	class, err := s.repo.Class.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeacherBadHomeroom
		}
		return err
	}
	if class.SchoolYearID != schoolYearID {
		return ErrTeacherBadHomeroom
	}
	other, err := s.repo.Teacher.GetByHomeroom(ctx, schoolYearID, classID)
	if err == nil && other.TeacherID != selfID {
		return ErrTeacherHomeroomTaken
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

func (s *teacherService) checkPhone(ctx context.Context, phone, selfID string) error {
	if phone == "" {
		return nil
	}
	other, err := s.repo.Teacher.GetByPhone(ctx, phone)
	if err == nil && other.TeacherID != selfID {
		return ErrTeacherPhoneExists
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

func (s *teacherService) checkUser(ctx context.Context, userID, selfID string) error {
	if userID == "" {
		return nil
	}
	if _, err := s.repo.User.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeacherUserNotFound
		}
		return err
	}
	other, err := s.repo.Teacher.GetByUserID(ctx, userID)
	if err == nil && other.TeacherID != selfID {
		return ErrTeacherUserLinked
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

// loadSubjects every id must name a subject of the year
func (s *teacherService) loadSubjects(ctx context.Context, schoolYearID string, ids []string) ([]model.Subject, error) {
	if len(ids) == 0 {
		return nil, ErrTeacherBadSubjects
	}
	subjects, err := s.repo.Subject.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	unique := make(map[string]bool, len(ids))
	for _, id := range ids {
		unique[id] = true
	}
	if len(subjects) != len(unique) {
		return nil, ErrTeacherBadSubjects
	}
	for _, sub := range subjects {
		if sub.SchoolYearID != schoolYearID {
			return nil, ErrTeacherBadSubjects
		}
	}
	return subjects, nil
}

func toTeacherResponse(t *model.Teacher) dto.TeacherResponse {
	resp := dto.TeacherResponse{
		ID:           t.TeacherID,
		SchoolYearID: t.SchoolYearID,
		Name:         t.Name,
		Phone:        derefStr(t.Phone),
		UserID:       derefStr(t.UserID),
		Subjects:     make([]dto.SubjectResponse, 0, len(t.Subjects)),
		Status:       t.Status,
	}
	if t.HomeroomClass != nil {
		c := toClassResponse(t.HomeroomClass)
		resp.HomeroomClass = &c
	}
	for i := range t.Subjects {
		resp.Subjects = append(resp.Subjects, toSubjectResponse(&t.Subjects[i]))
	}
	return resp
}
