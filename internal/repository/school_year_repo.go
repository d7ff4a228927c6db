package repository

import (
	"context"

	"gorm.io/gorm"

	"teaching-hours/backend/internal/model"
)

// SchoolYearRepository school year data access
type SchoolYearRepository interface {
	Create(ctx context.Context, year *model.SchoolYear) error
	GetByID(ctx context.Context, id string) (*model.SchoolYear, error)
	GetByLabel(ctx context.Context, label string) (*model.SchoolYear, error)
	GetActive(ctx context.Context) (*model.SchoolYear, error)
	List(ctx context.Context) ([]model.SchoolYear, error)
	Update(ctx context.Context, year *model.SchoolYear) error
	Delete(ctx context.Context, id string) error
}

type schoolYearRepo struct {
	db *gorm.DB
}

// NewSchoolYearRepo creates a SchoolYearRepository
func NewSchoolYearRepo(db *gorm.DB) SchoolYearRepository {
	return &schoolYearRepo{db: db}
}

func (r *schoolYearRepo) Create(ctx context.Context, year *model.SchoolYear) error {
	return r.db.WithContext(ctx).Create(year).Error
}

func (r *schoolYearRepo) GetByID(ctx context.Context, id string) (*model.SchoolYear, error) {
	var year model.SchoolYear
	err := r.db.WithContext(ctx).
		Where("school_year_id = ?", id).
		First(&year).Error
	if err != nil {
		return nil, err
	}
	return &year, nil
}

func (r *schoolYearRepo) GetByLabel(ctx context.Context, label string) (*model.SchoolYear, error) {
	var year model.SchoolYear
	err := r.db.WithContext(ctx).
		Where("label = ?", label).
		First(&year).Error
	if err != nil {
		return nil, err
	}
	return &year, nil
}

// GetActive the most recent active year; only one is expected
func (r *schoolYearRepo) GetActive(ctx context.Context) (*model.SchoolYear, error) {
	var year model.SchoolYear
	err := r.db.WithContext(ctx).
		Where("status = ?", model.StatusActive).
		Order("label DESC").
		First(&year).Error
	if err != nil {
		return nil, err
	}
	return &year, nil
}

func (r *schoolYearRepo) List(ctx context.Context) ([]model.SchoolYear, error) {
	var years []model.SchoolYear
	err := r.db.WithContext(ctx).
		Order("label DESC").
		Find(&years).Error
	return years, err
}

func (r *schoolYearRepo) Update(ctx context.Context, year *model.SchoolYear) error {
	return r.db.WithContext(ctx).Save(year).Error
}

func (r *schoolYearRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("school_year_id = ?", id).
		Delete(&model.SchoolYear{}).Error
}
