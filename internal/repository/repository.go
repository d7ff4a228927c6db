package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Repository aggregate of every repository
type Repository struct {
	db *gorm.DB

	User           UserRepository
	SchoolYear     SchoolYearRepository
	Week           WeekRepository
	Class          ClassRepository
	Subject        SubjectRepository
	Teacher        TeacherRepository
	TeachingRecord TeachingRecordRepository
}

// NewRepository builds the aggregate on db
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:             db,
		User:           NewUserRepo(db),
		SchoolYear:     NewSchoolYearRepo(db),
		Week:           NewWeekRepo(db),
		Class:          NewClassRepo(db),
		Subject:        NewSubjectRepo(db),
		Teacher:        NewTeacherRepo(db),
		TeachingRecord: NewTeachingRecordRepo(db),
	}
}

// BeginTx starts a transaction. It returns a nil tx when the aggregate has no
// database handle (tests built on mock repositories); callers guard with tx != nil.
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return tx, nil
}

// WithTx returns an aggregate whose repositories run inside tx.
// A nil tx returns r unchanged.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

// IsUniqueViolation reports whether err is a PostgreSQL unique_violation (23505).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
