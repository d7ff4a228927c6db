package repository

import (
	"context"

	"gorm.io/gorm"

	"teaching-hours/backend/internal/model"
)

// RecordFilter list filters; empty fields are ignored
type RecordFilter struct {
	SchoolYearID string
	TeacherID    string
	WeekID       string
	RecordType   string
}

// TeachingRecordRepository teaching record data access
type TeachingRecordRepository interface {
	Create(ctx context.Context, record *model.TeachingRecord) error
	GetByID(ctx context.Context, id string) (*model.TeachingRecord, error)
	// GetByTuple the record of one (teacher, week, subject, class)
	GetByTuple(ctx context.Context, teacherID, weekID, subjectID, classID string) (*model.TeachingRecord, error)
	List(ctx context.Context, filter RecordFilter, offset, limit int) ([]model.TeachingRecord, int64, error)
	// ListForExport a teacher's records of one year with Week, Class and Subject loaded.
	// A nil weekIDs means every week of the year.
	ListForExport(ctx context.Context, teacherID, schoolYearID string, weekIDs []string) ([]model.TeachingRecord, error)
	Update(ctx context.Context, record *model.TeachingRecord) error
	Delete(ctx context.Context, id string) error
	DeleteBySchoolYear(ctx context.Context, schoolYearID string) error
	CountByWeek(ctx context.Context, weekID string) (int64, error)
	CountByClass(ctx context.Context, classID string) (int64, error)
	CountBySubject(ctx context.Context, subjectID string) (int64, error)
	CountByTeacher(ctx context.Context, teacherID string) (int64, error)
}

type teachingRecordRepo struct {
	db *gorm.DB
}

// NewTeachingRecordRepo creates a TeachingRecordRepository
func NewTeachingRecordRepo(db *gorm.DB) TeachingRecordRepository {
	return &teachingRecordRepo{db: db}
}

func (r *teachingRecordRepo) Create(ctx context.Context, record *model.TeachingRecord) error {
	return r.db.WithContext(ctx).
		Omit("Teacher", "Week", "Subject", "Class").
		Create(record).Error
}

func (r *teachingRecordRepo) GetByID(ctx context.Context, id string) (*model.TeachingRecord, error) {
	var record model.TeachingRecord
	err := r.db.WithContext(ctx).
		Preload("Teacher").
		Preload("Week").
		Preload("Subject").
		Preload("Class").
		Where("record_id = ?", id).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *teachingRecordRepo) GetByTuple(ctx context.Context, teacherID, weekID, subjectID, classID string) (*model.TeachingRecord, error) {
	var record model.TeachingRecord
	err := r.db.WithContext(ctx).
		Where("teacher_id = ? AND week_id = ? AND subject_id = ? AND class_id = ?",
			teacherID, weekID, subjectID, classID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *teachingRecordRepo) List(ctx context.Context, filter RecordFilter, offset, limit int) ([]model.TeachingRecord, int64, error) {
	var records []model.TeachingRecord
	var total int64

	db := r.db.WithContext(ctx).Model(&model.TeachingRecord{})
	if filter.SchoolYearID != "" {
		db = db.Where("teaching_records.school_year_id = ?", filter.SchoolYearID)
	}
	if filter.TeacherID != "" {
		db = db.Where("teaching_records.teacher_id = ?", filter.TeacherID)
	}
	if filter.WeekID != "" {
		db = db.Where("teaching_records.week_id = ?", filter.WeekID)
	}
	if filter.RecordType != "" {
		db = db.Where("teaching_records.record_type = ?", filter.RecordType)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Teacher").Preload("Week").Preload("Subject").Preload("Class").
		Offset(offset).Limit(limit).
		Order("teaching_records.created_at DESC").
		Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func (r *teachingRecordRepo) ListForExport(ctx context.Context, teacherID, schoolYearID string, weekIDs []string) ([]model.TeachingRecord, error) {
	var records []model.TeachingRecord
	db := r.db.WithContext(ctx).
		Preload("Week").
		Preload("Subject").
		Preload("Class").
		Where("teacher_id = ? AND school_year_id = ?", teacherID, schoolYearID)
	if weekIDs != nil {
		if len(weekIDs) == 0 {
			return records, nil
		}
		db = db.Where("week_id IN ?", weekIDs)
	}
	err := db.Order("created_at ASC").Find(&records).Error
	return records, err
}

func (r *teachingRecordRepo) Update(ctx context.Context, record *model.TeachingRecord) error {
	return r.db.WithContext(ctx).
		Omit("Teacher", "Week", "Subject", "Class").
		Save(record).Error
}

func (r *teachingRecordRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("record_id = ?", id).
		Delete(&model.TeachingRecord{}).Error
}

func (r *teachingRecordRepo) DeleteBySchoolYear(ctx context.Context, schoolYearID string) error {
	return r.db.WithContext(ctx).
		Where("school_year_id = ?", schoolYearID).
		Delete(&model.TeachingRecord{}).Error
}

func (r *teachingRecordRepo) CountByWeek(ctx context.Context, weekID string) (int64, error) {
	return r.count(ctx, "week_id", weekID)
}

func (r *teachingRecordRepo) CountByClass(ctx context.Context, classID string) (int64, error) {
	return r.count(ctx, "class_id", classID)
}

func (r *teachingRecordRepo) CountBySubject(ctx context.Context, subjectID string) (int64, error) {
	return r.count(ctx, "subject_id", subjectID)
}

func (r *teachingRecordRepo) CountByTeacher(ctx context.Context, teacherID string) (int64, error) {
	return r.count(ctx, "teacher_id", teacherID)
}

func (r *teachingRecordRepo) count(ctx context.Context, column, id string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.TeachingRecord{}).
		Where(column+" = ?", id).
		Count(&n).Error
	return n, err
}
