package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"teaching-hours/backend/internal/dto"
	"teaching-hours/backend/internal/model"
	apperrors "teaching-hours/backend/pkg/errors"
)

func setupTestRecordService() (TeachingRecordService, *schoolFixture) {
	f := newSchoolFixture()
	return NewTeachingRecordService(f.store.repo(), zap.NewNop()), f
}

func (f *schoolFixture) recordRequest(weekIdx, periods int) *dto.CreateTeachingRecordRequest {
	return &dto.CreateTeachingRecordRequest{
		TeacherID: f.teacherID,
		WeekID:    f.weekIDs[weekIdx],
		SubjectID: f.subjectID,
		ClassID:   f.class10ID,
		Periods:   periods,
	}
}

func TestRecordService_Create(t *testing.T) {
	svc, f := setupTestRecordService()

	rec, err := svc.Create(context.Background(), f.recordRequest(0, 4), f.teacherCaller())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if rec.SchoolYearID != f.yearID {
		t.Errorf("school year should come from the week, got %q", rec.SchoolYearID)
	}
	if rec.RecordType != model.RecordTypeTeaching {
		t.Errorf("type should default to teaching, got %q", rec.RecordType)
	}
	if rec.TeacherName != "Nguyễn Thị Lan" || rec.ClassName != "10A1" || rec.WeekNumber != 1 {
		t.Errorf("names should be resolved: %+v", rec)
	}
}

func TestRecordService_DuplicateIsConflict(t *testing.T) {
	svc, f := setupTestRecordService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, f.recordRequest(0, 4), adminCaller()); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := svc.Create(ctx, f.recordRequest(0, 2), adminCaller())
	if !errors.Is(err, ErrRecordDuplicate) {
		t.Fatalf("expected ErrRecordDuplicate, got: %v", err)
	}
	if apperrors.HTTPStatus(err) != 409 {
		t.Errorf("duplicate should map to 409, got %d", apperrors.HTTPStatus(err))
	}
}

func TestRecordService_Validation(t *testing.T) {
	svc, f := setupTestRecordService()
	ctx := context.Background()

	for _, periods := range []int{0, 21} {
		if _, err := svc.Create(ctx, f.recordRequest(0, periods), adminCaller()); !errors.Is(err, ErrRecordBadPeriods) {
			t.Errorf("periods=%d: expected ErrRecordBadPeriods, got: %v", periods, err)
		}
	}

	req := f.recordRequest(0, 3)
	req.RecordType = "overtime"
	if _, err := svc.Create(ctx, req, adminCaller()); !errors.Is(err, ErrRecordBadType) {
		t.Errorf("expected ErrRecordBadType, got: %v", err)
	}

	f.store.classes["class-other"] = model.Class{ClassID: "class-other", SchoolYearID: "year-other", Name: "12C", Grade: 12}
	req = f.recordRequest(0, 3)
	req.ClassID = "class-other"
	if _, err := svc.Create(ctx, req, adminCaller()); !errors.Is(err, ErrRecordBadRefs) {
		t.Errorf("expected ErrRecordBadRefs, got: %v", err)
	}

	req = f.recordRequest(0, 3)
	req.WeekID = "week-missing"
	if _, err := svc.Create(ctx, req, adminCaller()); !errors.Is(err, ErrRecordWeekGone) {
		t.Errorf("expected ErrRecordWeekGone, got: %v", err)
	}
}

func TestRecordService_TeacherOnlyTouchesOwnRecords(t *testing.T) {
	svc, f := setupTestRecordService()
	ctx := context.Background()
	other := Caller{UserID: "user-minh", Role: model.RoleTeacher, TeacherID: "teacher-minh"}

	if _, err := svc.Create(ctx, f.recordRequest(0, 4), other); !errors.Is(err, ErrRecordForbidden) {
		t.Errorf("expected ErrRecordForbidden, got: %v", err)
	}

	rec, err := svc.Create(ctx, f.recordRequest(0, 4), f.teacherCaller())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	periods := 6
	if _, err := svc.Update(ctx, rec.ID, &dto.UpdateTeachingRecordRequest{Periods: &periods}, other); !errors.Is(err, ErrRecordForbidden) {
		t.Errorf("expected ErrRecordForbidden on update, got: %v", err)
	}
	if err := svc.Delete(ctx, rec.ID, other); !errors.Is(err, ErrRecordForbidden) {
		t.Errorf("expected ErrRecordForbidden on delete, got: %v", err)
	}

	updated, err := svc.Update(ctx, rec.ID, &dto.UpdateTeachingRecordRequest{Periods: &periods}, f.teacherCaller())
	if err != nil || updated.Periods != 6 {
		t.Fatalf("owner update should succeed, got %+v, %v", updated, err)
	}
	if err := svc.Delete(ctx, rec.ID, adminCaller()); err != nil {
		t.Errorf("admin delete should succeed: %v", err)
	}
	if _, err := svc.GetByID(ctx, rec.ID, adminCaller()); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound after delete, got: %v", err)
	}
}

func TestRecordService_ListScopedForTeachers(t *testing.T) {
	svc, f := setupTestRecordService()
	ctx := context.Background()
	f.addRecord("r1", f.teacherID, f.weekIDs[0], f.class10ID, 4, model.RecordTypeTeaching)
	f.addRecord("r2", "teacher-minh", f.weekIDs[0], f.class11ID, 3, model.RecordTypeTeaching)

	all, total, err := svc.List(ctx, &dto.TeachingRecordListRequest{}, adminCaller())
	if err != nil || total != 2 || len(all) != 2 {
		t.Fatalf("admin should see 2 records, got total=%d err=%v", total, err)
	}

	own, total, err := svc.List(ctx, &dto.TeachingRecordListRequest{TeacherID: "teacher-minh"}, f.teacherCaller())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 1 || own[0].TeacherID != f.teacherID {
		t.Errorf("teacher filter must be forced to the caller, got %+v", own)
	}

	none, total, err := svc.List(ctx, &dto.TeachingRecordListRequest{}, Caller{UserID: "u", Role: model.RoleTeacher})
	if err != nil || total != 0 || len(none) != 0 {
		t.Errorf("unlinked accounts see nothing, got total=%d err=%v", total, err)
	}
}

func TestRecordService_BatchCreate(t *testing.T) {
	svc, f := setupTestRecordService()

	bad := f.recordRequest(1, 30)
	result, err := svc.BatchCreate(context.Background(), &dto.BatchCreateTeachingRecordRequest{
		Records: []dto.CreateTeachingRecordRequest{*f.recordRequest(0, 4), *bad, *f.recordRequest(0, 2)},
	}, f.teacherCaller())
	if err != nil {
		t.Fatalf("BatchCreate failed: %v", err)
	}
	if len(result.Created) != 1 || len(result.Errors) != 2 {
		t.Fatalf("expected 1 created and 2 errors, got %d/%d", len(result.Created), len(result.Errors))
	}
	if result.Errors[0].Row != 2 || result.Errors[1].Row != 3 {
		t.Errorf("rows should be reported 1-based, got %+v", result.Errors)
	}
	if result.Errors[1].Reason != ErrRecordDuplicate.Message {
		t.Errorf("unexpected reason %q", result.Errors[1].Reason)
	}
}
