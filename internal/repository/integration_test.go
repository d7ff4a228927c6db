//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"teaching-hours/backend/internal/model"
	"teaching-hours/backend/internal/repository"
	"teaching-hours/backend/pkg/database"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var (
	testDB   *gorm.DB
	yearSeq  atomic.Int64
	yearBase = 3000 + int(time.Now().Unix()%500)*10
)

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=teaching_hours password=teaching_hours dbname=teaching_hours_test sslmode=disable TimeZone=Asia/Ho_Chi_Minh"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect test database: %v\n", err)
		os.Exit(1)
	}

	sqlDB, err := testDB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "get sql.DB: %v\n", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

type yearFixture struct {
	repo    *repository.Repository
	year    *model.SchoolYear
	class   *model.Class
	subject *model.Subject
	teacher *model.Teacher
	weeks   []model.Week
}

// setupYear creates a school year with one class, subject, teacher and four weeks.
// Labels start from a clock-derived base so reruns do not collide with leftovers.
func setupYear(t *testing.T) *yearFixture {
	t.Helper()
	ctx := context.Background()
	repo := repository.NewRepository(testDB)

	start := yearBase + int(yearSeq.Add(1))
	f := &yearFixture{repo: repo}
	f.year = &model.SchoolYear{Label: fmt.Sprintf("%d-%d", start, start+1), Status: model.StatusActive}
	if err := repo.SchoolYear.Create(ctx, f.year); err != nil {
		t.Fatalf("create school year: %v", err)
	}
	t.Cleanup(func() { deleteYear(t, repo, f.year.SchoolYearID) })

	f.class = &model.Class{SchoolYearID: f.year.SchoolYearID, Name: "10A1", Grade: 10, Status: model.StatusActive}
	if err := repo.Class.Create(ctx, f.class); err != nil {
		t.Fatalf("create class: %v", err)
	}
	f.subject = &model.Subject{SchoolYearID: f.year.SchoolYearID, Name: "Toán", Status: model.StatusActive}
	if err := repo.Subject.Create(ctx, f.subject); err != nil {
		t.Fatalf("create subject: %v", err)
	}
	phone := fmt.Sprintf("09%08d", time.Now().UnixNano()%100000000)
	f.teacher = &model.Teacher{
		SchoolYearID:    f.year.SchoolYearID,
		Name:            "Nguyễn Thị Lan",
		Phone:           &phone,
		HomeroomClassID: f.class.ClassID,
		Status:          model.StatusActive,
		Subjects:        []model.Subject{*f.subject},
	}
	if err := repo.Teacher.Create(ctx, f.teacher); err != nil {
		t.Fatalf("create teacher: %v", err)
	}

	first := time.Date(start, 9, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		f.weeks = append(f.weeks, model.Week{
			SchoolYearID: f.year.SchoolYearID,
			WeekNumber:   i + 1,
			StartDate:    first.AddDate(0, 0, 7*i),
			EndDate:      first.AddDate(0, 0, 7*i+6),
			Status:       model.StatusActive,
		})
	}
	if err := repo.Week.BatchCreate(ctx, f.weeks); err != nil {
		t.Fatalf("create weeks: %v", err)
	}
	return f
}

func deleteYear(t *testing.T, repo *repository.Repository, id string) {
	ctx := context.Background()
	for _, step := range []func(context.Context, string) error{
		repo.TeachingRecord.DeleteBySchoolYear,
		repo.Teacher.DeleteBySchoolYear,
		repo.Week.DeleteBySchoolYear,
		repo.Class.DeleteBySchoolYear,
		repo.Subject.DeleteBySchoolYear,
		repo.SchoolYear.Delete,
	} {
		if err := step(ctx, id); err != nil {
			t.Errorf("cleanup school year %s: %v", id, err)
			return
		}
	}
}

func (f *yearFixture) record(weekIdx, periods int, recordType string) *model.TeachingRecord {
	return &model.TeachingRecord{
		TeacherID:    f.teacher.TeacherID,
		WeekID:       f.weeks[weekIdx].WeekID,
		SubjectID:    f.subject.SubjectID,
		ClassID:      f.class.ClassID,
		SchoolYearID: f.year.SchoolYearID,
		Periods:      periods,
		RecordType:   recordType,
	}
}

// ═══════════════════════════════════════════════════════════
// Tests
// ═══════════════════════════════════════════════════════════

func TestTeacherRepo_LoadsAssociations(t *testing.T) {
	f := setupYear(t)
	ctx := context.Background()

	got, err := f.repo.Teacher.GetByID(ctx, f.teacher.TeacherID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.HomeroomClass == nil || got.HomeroomClass.Name != "10A1" {
		t.Errorf("homeroom class not preloaded: %+v", got.HomeroomClass)
	}
	if len(got.Subjects) != 1 || got.Subjects[0].Name != "Toán" {
		t.Errorf("subjects not preloaded: %+v", got.Subjects)
	}

	if _, err := f.repo.Teacher.GetByHomeroom(ctx, f.year.SchoolYearID, f.class.ClassID); err != nil {
		t.Errorf("GetByHomeroom: %v", err)
	}

	if err := f.repo.Teacher.ClearContacts(ctx, f.year.SchoolYearID); err != nil {
		t.Fatalf("ClearContacts: %v", err)
	}
	got, _ = f.repo.Teacher.GetByID(ctx, f.teacher.TeacherID)
	if got.Phone != nil {
		t.Errorf("phone should be cleared, got %v", *got.Phone)
	}
}

func TestTeachingRecordRepo_TupleUnique(t *testing.T) {
	f := setupYear(t)
	ctx := context.Background()

	if err := f.repo.TeachingRecord.Create(ctx, f.record(0, 4, model.RecordTypeTeaching)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	err := f.repo.TeachingRecord.Create(ctx, f.record(0, 2, model.RecordTypeExtraDuty))
	if !repository.IsUniqueViolation(err) {
		t.Errorf("same tuple should violate the unique constraint, got %v", err)
	}

	found, err := f.repo.TeachingRecord.GetByTuple(ctx, f.teacher.TeacherID, f.weeks[0].WeekID, f.subject.SubjectID, f.class.ClassID)
	if err != nil || found.Periods != 4 {
		t.Errorf("GetByTuple: %+v %v", found, err)
	}
}

func TestTeachingRecordRepo_ListForExport(t *testing.T) {
	f := setupYear(t)
	ctx := context.Background()

	for i, periods := range []int{4, 3, 5} {
		if err := f.repo.TeachingRecord.Create(ctx, f.record(i, periods, model.RecordTypeTeaching)); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	all, err := f.repo.TeachingRecord.ListForExport(ctx, f.teacher.TeacherID, f.year.SchoolYearID, nil)
	if err != nil {
		t.Fatalf("ListForExport: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}
	for _, r := range all {
		if r.Week == nil || r.Class == nil || r.Subject == nil {
			t.Errorf("associations should be preloaded: %+v", r)
		}
	}

	scoped, err := f.repo.TeachingRecord.ListForExport(ctx, f.teacher.TeacherID, f.year.SchoolYearID, []string{f.weeks[1].WeekID})
	if err != nil || len(scoped) != 1 || scoped[0].Periods != 3 {
		t.Errorf("week scope: %+v %v", scoped, err)
	}

	n, err := f.repo.TeachingRecord.CountByWeek(ctx, f.weeks[0].WeekID)
	if err != nil || n != 1 {
		t.Errorf("CountByWeek: %d %v", n, err)
	}
}

func TestWeekRepo_RenumberInTransaction(t *testing.T) {
	f := setupYear(t)
	ctx := context.Background()

	weeks, err := f.repo.Week.ListBySchoolYear(ctx, f.year.SchoolYearID, "")
	if err != nil || len(weeks) != 4 {
		t.Fatalf("ListBySchoolYear: %d %v", len(weeks), err)
	}

	// reversing the numbers passes only because the unique constraint is deferred
	tx, err := f.repo.BeginTx(ctx)
	if err != nil {
		t.Fatal(err)
	}
	txRepo := f.repo.WithTx(tx)
	for i, w := range weeks {
		if err := txRepo.Week.UpdateNumber(ctx, w.WeekID, len(weeks)-i); err != nil {
			tx.Rollback()
			t.Fatalf("UpdateNumber: %v", err)
		}
	}
	if err := tx.Commit().Error; err != nil {
		t.Fatalf("commit: %v", err)
	}

	got, _ := f.repo.Week.GetByID(ctx, weeks[0].WeekID)
	if got.WeekNumber != 4 {
		t.Errorf("expected week number 4, got %d", got.WeekNumber)
	}
}

func TestSchoolYearRepo_ActiveAndLabel(t *testing.T) {
	f := setupYear(t)
	ctx := context.Background()

	byLabel, err := f.repo.SchoolYear.GetByLabel(ctx, f.year.Label)
	if err != nil || byLabel.SchoolYearID != f.year.SchoolYearID {
		t.Errorf("GetByLabel: %+v %v", byLabel, err)
	}

	dup := &model.SchoolYear{Label: f.year.Label, Status: model.StatusActive}
	if err := f.repo.SchoolYear.Create(ctx, dup); !repository.IsUniqueViolation(err) {
		t.Errorf("duplicate label should violate the unique constraint, got %v", err)
	}
}
