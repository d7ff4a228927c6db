package repository

import (
	"context"

	"gorm.io/gorm"

	"teaching-hours/backend/internal/model"
)

// ClassRepository class data access
type ClassRepository interface {
	Create(ctx context.Context, class *model.Class) error
	GetByID(ctx context.Context, id string) (*model.Class, error)
	GetByName(ctx context.Context, schoolYearID, name string) (*model.Class, error)
	ListBySchoolYear(ctx context.Context, schoolYearID string, grade int) ([]model.Class, error)
	Update(ctx context.Context, class *model.Class) error
	Delete(ctx context.Context, id string) error
	DeleteBySchoolYear(ctx context.Context, schoolYearID string) error
}

type classRepo struct {
	db *gorm.DB
}

// NewClassRepo creates a ClassRepository
func NewClassRepo(db *gorm.DB) ClassRepository {
	return &classRepo{db: db}
}

func (r *classRepo) Create(ctx context.Context, class *model.Class) error {
	return r.db.WithContext(ctx).Create(class).Error
}

func (r *classRepo) GetByID(ctx context.Context, id string) (*model.Class, error) {
	var class model.Class
	err := r.db.WithContext(ctx).
		Where("class_id = ?", id).
		First(&class).Error
	if err != nil {
		return nil, err
	}
	return &class, nil
}

func (r *classRepo) GetByName(ctx context.Context, schoolYearID, name string) (*model.Class, error) {
	var class model.Class
	err := r.db.WithContext(ctx).
		Where("school_year_id = ? AND name = ?", schoolYearID, name).
		First(&class).Error
	if err != nil {
		return nil, err
	}
	return &class, nil
}

func (r *classRepo) ListBySchoolYear(ctx context.Context, schoolYearID string, grade int) ([]model.Class, error) {
	var classes []model.Class
	db := r.db.WithContext(ctx).Where("school_year_id = ?", schoolYearID)
	if grade != 0 {
		db = db.Where("grade = ?", grade)
	}
	err := db.Order("grade DESC, name ASC").Find(&classes).Error
	return classes, err
}

func (r *classRepo) Update(ctx context.Context, class *model.Class) error {
	return r.db.WithContext(ctx).Save(class).Error
}

func (r *classRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("class_id = ?", id).
		Delete(&model.Class{}).Error
}

func (r *classRepo) DeleteBySchoolYear(ctx context.Context, schoolYearID string) error {
	return r.db.WithContext(ctx).
		Where("school_year_id = ?", schoolYearID).
		Delete(&model.Class{}).Error
}
