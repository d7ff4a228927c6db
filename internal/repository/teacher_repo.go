package repository

import (
	"context"

	"gorm.io/gorm"

	"teaching-hours/backend/internal/model"
)

// TeacherRepository teacher data access
type TeacherRepository interface {
	// Create inserts the teacher and its teacher_subjects links; Subjects must already exist
	Create(ctx context.Context, teacher *model.Teacher) error
	GetByID(ctx context.Context, id string) (*model.Teacher, error)
	GetByUserID(ctx context.Context, userID string) (*model.Teacher, error)
	GetByPhone(ctx context.Context, phone string) (*model.Teacher, error)
	GetByHomeroom(ctx context.Context, schoolYearID, classID string) (*model.Teacher, error)
	List(ctx context.Context, schoolYearID, keyword string, offset, limit int) ([]model.Teacher, int64, error)
	ListBySchoolYear(ctx context.Context, schoolYearID string) ([]model.Teacher, error)
	Update(ctx context.Context, teacher *model.Teacher) error
	ReplaceSubjects(ctx context.Context, teacher *model.Teacher, subjects []model.Subject) error
	Delete(ctx context.Context, id string) error
	DeleteBySchoolYear(ctx context.Context, schoolYearID string) error
	// ClearContacts releases phone and user links of a year so they can move to the next one
	ClearContacts(ctx context.Context, schoolYearID string) error
}

type teacherRepo struct {
	db *gorm.DB
}

// NewTeacherRepo creates a TeacherRepository
func NewTeacherRepo(db *gorm.DB) TeacherRepository {
	return &teacherRepo{db: db}
}

func (r *teacherRepo) Create(ctx context.Context, teacher *model.Teacher) error {
	return r.db.WithContext(ctx).
		Omit("HomeroomClass", "Subjects.*").
		Create(teacher).Error
}

func (r *teacherRepo) GetByID(ctx context.Context, id string) (*model.Teacher, error) {
	var teacher model.Teacher
	err := r.db.WithContext(ctx).
		Preload("HomeroomClass").
		Preload("Subjects").
		Where("teacher_id = ?", id).
		First(&teacher).Error
	if err != nil {
		return nil, err
	}
	return &teacher, nil
}

func (r *teacherRepo) GetByUserID(ctx context.Context, userID string) (*model.Teacher, error) {
	var teacher model.Teacher
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&teacher).Error
	if err != nil {
		return nil, err
	}
	return &teacher, nil
}

func (r *teacherRepo) GetByPhone(ctx context.Context, phone string) (*model.Teacher, error) {
	var teacher model.Teacher
	err := r.db.WithContext(ctx).
		Where("phone = ?", phone).
		First(&teacher).Error
	if err != nil {
		return nil, err
	}
	return &teacher, nil
}

func (r *teacherRepo) GetByHomeroom(ctx context.Context, schoolYearID, classID string) (*model.Teacher, error) {
	var teacher model.Teacher
	err := r.db.WithContext(ctx).
		Where("school_year_id = ? AND homeroom_class_id = ?", schoolYearID, classID).
		First(&teacher).Error
	if err != nil {
		return nil, err
	}
	return &teacher, nil
}

func (r *teacherRepo) List(ctx context.Context, schoolYearID, keyword string, offset, limit int) ([]model.Teacher, int64, error) {
	var teachers []model.Teacher
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Teacher{}).
		Where("school_year_id = ?", schoolYearID)
	if keyword != "" {
		like := "%" + keyword + "%"
		db = db.Where("name ILIKE ? OR phone ILIKE ?", like, like)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("HomeroomClass").Preload("Subjects").
		Offset(offset).Limit(limit).
		Order("name ASC").
		Find(&teachers).Error; err != nil {
		return nil, 0, err
	}

	return teachers, total, nil
}

func (r *teacherRepo) ListBySchoolYear(ctx context.Context, schoolYearID string) ([]model.Teacher, error) {
	var teachers []model.Teacher
	err := r.db.WithContext(ctx).
		Preload("HomeroomClass").
		Preload("Subjects").
		Where("school_year_id = ?", schoolYearID).
		Order("name ASC").
		Find(&teachers).Error
	return teachers, err
}

func (r *teacherRepo) Update(ctx context.Context, teacher *model.Teacher) error {
	return r.db.WithContext(ctx).
		Omit("HomeroomClass", "Subjects").
		Save(teacher).Error
}

func (r *teacherRepo) ReplaceSubjects(ctx context.Context, teacher *model.Teacher, subjects []model.Subject) error {
	return r.db.WithContext(ctx).
		Model(teacher).
		Omit("Subjects.*").
		Association("Subjects").
		Replace(subjects)
}

func (r *teacherRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("teacher_id = ?", id).
		Delete(&model.Teacher{}).Error
}

func (r *teacherRepo) DeleteBySchoolYear(ctx context.Context, schoolYearID string) error {
	return r.db.WithContext(ctx).
		Where("school_year_id = ?", schoolYearID).
		Delete(&model.Teacher{}).Error
}

func (r *teacherRepo) ClearContacts(ctx context.Context, schoolYearID string) error {
	return r.db.WithContext(ctx).
		Model(&model.Teacher{}).
		Where("school_year_id = ?", schoolYearID).
		Updates(map[string]interface{}{
			"phone":      nil,
			"user_id":    nil,
			"updated_at": gorm.Expr("NOW()"),
		}).Error
}
