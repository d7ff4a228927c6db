package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"teaching-hours/backend/internal/dto"
	"teaching-hours/backend/internal/model"
)

func TestGradeFromName(t *testing.T) {
	cases := map[string]int{"10A1": 10, "11B2": 11, " 12C ": 12}
	for name, want := range cases {
		got, ok := GradeFromName(name)
		if !ok || got != want {
			t.Errorf("GradeFromName(%q) = %d, %v; want %d", name, got, ok, want)
		}
	}
	for _, name := range []string{"A1", "9A", "13B", ""} {
		if _, ok := GradeFromName(name); ok {
			t.Errorf("GradeFromName(%q) should fail", name)
		}
	}
}

func TestClassService_Create(t *testing.T) {
	f := newSchoolFixture()
	svc := NewClassService(f.store.repo(), zap.NewNop())
	ctx := context.Background()

	c, err := svc.Create(ctx, f.yearID, &dto.CreateClassRequest{Name: "12A3"}, "admin-1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if c.Grade != 12 {
		t.Errorf("grade should be derived from the name, got %d", c.Grade)
	}

	if _, err := svc.Create(ctx, f.yearID, &dto.CreateClassRequest{Name: "10A1"}, ""); !errors.Is(err, ErrClassExists) {
		t.Errorf("expected ErrClassExists, got: %v", err)
	}
	if _, err := svc.Create(ctx, "year-next", &dto.CreateClassRequest{Name: "10A1"}, ""); err != nil {
		t.Errorf("names are unique per year only: %v", err)
	}
	if _, err := svc.Create(ctx, f.yearID, &dto.CreateClassRequest{Name: "Chuyên Toán"}, ""); !errors.Is(err, ErrClassBadGrade) {
		t.Errorf("expected ErrClassBadGrade, got: %v", err)
	}

	list, err := svc.List(ctx, f.yearID, 12)
	if err != nil || len(list) != 1 {
		t.Errorf("grade filter: got %d classes, err=%v", len(list), err)
	}
}

func TestClassService_DeleteReferenced(t *testing.T) {
	f := newSchoolFixture()
	svc := NewClassService(f.store.repo(), zap.NewNop())
	ctx := context.Background()

	if err := svc.Delete(ctx, f.class10ID); !errors.Is(err, ErrClassInUse) {
		t.Errorf("homeroom class should be in use, got: %v", err)
	}

	f.addRecord("r1", f.teacherID, f.weekIDs[0], f.class11ID, 2, model.RecordTypeTeaching)
	if err := svc.Delete(ctx, f.class11ID); !errors.Is(err, ErrClassInUse) {
		t.Errorf("class with records should be in use, got: %v", err)
	}

	delete(f.store.records, "r1")
	if err := svc.Delete(ctx, f.class11ID); err != nil {
		t.Errorf("Delete should succeed: %v", err)
	}
	if err := svc.Delete(ctx, f.class11ID); !errors.Is(err, ErrClassNotFound) {
		t.Errorf("expected ErrClassNotFound, got: %v", err)
	}
}

func TestSubjectService(t *testing.T) {
	f := newSchoolFixture()
	svc := NewSubjectService(f.store.repo(), zap.NewNop())
	ctx := context.Background()

	if _, err := svc.Create(ctx, f.yearID, &dto.CreateSubjectRequest{Name: "Toán"}, ""); !errors.Is(err, ErrSubjectExists) {
		t.Errorf("expected ErrSubjectExists, got: %v", err)
	}
	lit, err := svc.Create(ctx, f.yearID, &dto.CreateSubjectRequest{Name: " Ngữ văn "}, "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if lit.Name != "Ngữ văn" {
		t.Errorf("name should be trimmed, got %q", lit.Name)
	}

	name := "Toán"
	if _, err := svc.Update(ctx, lit.ID, &dto.UpdateSubjectRequest{Name: &name}, ""); !errors.Is(err, ErrSubjectExists) {
		t.Errorf("rename onto an existing subject should conflict, got: %v", err)
	}

	f.addRecord("r1", f.teacherID, f.weekIDs[0], f.class10ID, 2, model.RecordTypeTeaching)
	if err := svc.Delete(ctx, f.subjectID); !errors.Is(err, ErrSubjectInUse) {
		t.Errorf("expected ErrSubjectInUse, got: %v", err)
	}
	if err := svc.Delete(ctx, lit.ID); err != nil {
		t.Errorf("Delete should succeed: %v", err)
	}
}
