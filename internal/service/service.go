package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"teaching-hours/backend/config"
	"teaching-hours/backend/internal/dto"
	"teaching-hours/backend/internal/model"
	"teaching-hours/backend/internal/repository"
	"teaching-hours/backend/pkg/jwt"
)

// Service aggregate of every service
type Service struct {
	Auth           AuthService
	User           UserService
	SchoolYear     SchoolYearService
	Week           WeekService
	Class          ClassService
	Subject        SubjectService
	Teacher        TeacherService
	TeachingRecord TeachingRecordService
	Export         ExportService
}

// NewService builds every service. blacklist may be nil when Redis is not configured.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:           NewAuthService(cfg, repo, jwtMgr, blacklist, logger),
		User:           NewUserService(repo, logger),
		SchoolYear:     NewSchoolYearService(repo, logger),
		Week:           NewWeekService(repo, logger),
		Class:          NewClassService(repo, logger),
		Subject:        NewSubjectService(repo, logger),
		Teacher:        NewTeacherService(repo, logger),
		TeachingRecord: NewTeachingRecordService(repo, logger),
		Export:         NewExportService(&cfg.Report, repo, logger),
	}
}

// TokenBlacklist revoked token ids, backed by Redis in production
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// Caller the authenticated actor of a request
type Caller struct {
	UserID    string
	Role      string
	TeacherID string
}

// IsAdmin reports whether the caller has the admin role
func (c Caller) IsAdmin() bool { return c.Role == model.RoleAdmin }

func parseDate(s string) (time.Time, error) {
	return time.Parse(dto.DateLayout, s)
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefStr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// civilDate drops the clock and zone, keeping the calendar date
func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// inTx runs fn on a transactional repository, or on repo itself when no database is attached
func inTx(ctx context.Context, repo *repository.Repository, fn func(txRepo *repository.Repository) error) error {
	tx, err := repo.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	if err := fn(repo.WithTx(tx)); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		return err
	}
	if tx != nil {
		return tx.Commit().Error
	}
	return nil
}
