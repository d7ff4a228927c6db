package repository

import (
	"context"

	"gorm.io/gorm"

	"teaching-hours/backend/internal/model"
)

// WeekRepository week data access
type WeekRepository interface {
	Create(ctx context.Context, week *model.Week) error
	BatchCreate(ctx context.Context, weeks []model.Week) error
	GetByID(ctx context.Context, id string) (*model.Week, error)
	// ListBySchoolYear weeks of one year ordered by start date; status filters when non-empty
	ListBySchoolYear(ctx context.Context, schoolYearID, status string) ([]model.Week, error)
	Update(ctx context.Context, week *model.Week) error
	UpdateNumber(ctx context.Context, id string, number int) error
	Delete(ctx context.Context, id string) error
	DeleteBySchoolYear(ctx context.Context, schoolYearID string) error
}

type weekRepo struct {
	db *gorm.DB
}

// NewWeekRepo creates a WeekRepository
func NewWeekRepo(db *gorm.DB) WeekRepository {
	return &weekRepo{db: db}
}

func (r *weekRepo) Create(ctx context.Context, week *model.Week) error {
	return r.db.WithContext(ctx).Create(week).Error
}

func (r *weekRepo) BatchCreate(ctx context.Context, weeks []model.Week) error {
	if len(weeks) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&weeks).Error
}

func (r *weekRepo) GetByID(ctx context.Context, id string) (*model.Week, error) {
	var week model.Week
	err := r.db.WithContext(ctx).
		Where("week_id = ?", id).
		First(&week).Error
	if err != nil {
		return nil, err
	}
	return &week, nil
}

func (r *weekRepo) ListBySchoolYear(ctx context.Context, schoolYearID, status string) ([]model.Week, error) {
	var weeks []model.Week
	db := r.db.WithContext(ctx).Where("school_year_id = ?", schoolYearID)
	if status != "" {
		db = db.Where("status = ?", status)
	}
	err := db.Order("start_date ASC, week_number ASC").Find(&weeks).Error
	return weeks, err
}

func (r *weekRepo) Update(ctx context.Context, week *model.Week) error {
	return r.db.WithContext(ctx).Save(week).Error
}

// UpdateNumber rewrites week_number only; the unique (year, number) constraint is deferred to commit
func (r *weekRepo) UpdateNumber(ctx context.Context, id string, number int) error {
	return r.db.WithContext(ctx).
		Model(&model.Week{}).
		Where("week_id = ?", id).
		Updates(map[string]interface{}{
			"week_number": number,
			"updated_at":  gorm.Expr("NOW()"),
		}).Error
}

func (r *weekRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("week_id = ?", id).
		Delete(&model.Week{}).Error
}

func (r *weekRepo) DeleteBySchoolYear(ctx context.Context, schoolYearID string) error {
	return r.db.WithContext(ctx).
		Where("school_year_id = ?", schoolYearID).
		Delete(&model.Week{}).Error
}
