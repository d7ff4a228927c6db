package repository

import (
	"context"

	"gorm.io/gorm"

	"teaching-hours/backend/internal/model"
)

// SubjectRepository subject data access
type SubjectRepository interface {
	Create(ctx context.Context, subject *model.Subject) error
	GetByID(ctx context.Context, id string) (*model.Subject, error)
	GetByName(ctx context.Context, schoolYearID, name string) (*model.Subject, error)
	GetByIDs(ctx context.Context, ids []string) ([]model.Subject, error)
	ListBySchoolYear(ctx context.Context, schoolYearID string) ([]model.Subject, error)
	Update(ctx context.Context, subject *model.Subject) error
	Delete(ctx context.Context, id string) error
	DeleteBySchoolYear(ctx context.Context, schoolYearID string) error
}

type subjectRepo struct {
	db *gorm.DB
}

// NewSubjectRepo creates a SubjectRepository
func NewSubjectRepo(db *gorm.DB) SubjectRepository {
	return &subjectRepo{db: db}
}

func (r *subjectRepo) Create(ctx context.Context, subject *model.Subject) error {
	return r.db.WithContext(ctx).Create(subject).Error
}

func (r *subjectRepo) GetByID(ctx context.Context, id string) (*model.Subject, error) {
	var subject model.Subject
	err := r.db.WithContext(ctx).
		Where("subject_id = ?", id).
		First(&subject).Error
	if err != nil {
		return nil, err
	}
	return &subject, nil
}

func (r *subjectRepo) GetByName(ctx context.Context, schoolYearID, name string) (*model.Subject, error) {
	var subject model.Subject
	err := r.db.WithContext(ctx).
		Where("school_year_id = ? AND name = ?", schoolYearID, name).
		First(&subject).Error
	if err != nil {
		return nil, err
	}
	return &subject, nil
}

func (r *subjectRepo) GetByIDs(ctx context.Context, ids []string) ([]model.Subject, error) {
	var subjects []model.Subject
	if len(ids) == 0 {
		return subjects, nil
	}
	err := r.db.WithContext(ctx).
		Where("subject_id IN ?", ids).
		Order("name ASC").
		Find(&subjects).Error
	return subjects, err
}

func (r *subjectRepo) ListBySchoolYear(ctx context.Context, schoolYearID string) ([]model.Subject, error) {
	var subjects []model.Subject
	err := r.db.WithContext(ctx).
		Where("school_year_id = ?", schoolYearID).
		Order("name ASC").
		Find(&subjects).Error
	return subjects, err
}

func (r *subjectRepo) Update(ctx context.Context, subject *model.Subject) error {
	return r.db.WithContext(ctx).Save(subject).Error
}

func (r *subjectRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("subject_id = ?", id).
		Delete(&model.Subject{}).Error
}

func (r *subjectRepo) DeleteBySchoolYear(ctx context.Context, schoolYearID string) error {
	return r.db.WithContext(ctx).
		Where("school_year_id = ?", schoolYearID).
		Delete(&model.Subject{}).Error
}
