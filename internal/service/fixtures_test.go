package service

import (
	"fmt"
	"time"

	"teaching-hours/backend/internal/model"
)

// schoolFixture one active year with September 2024 weeks, two classes, one subject and one teacher
type schoolFixture struct {
	store     *mockStore
	yearID    string
	class10ID string
	class11ID string
	subjectID string
	teacherID string
	userID    string
	weekIDs   []string
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newSchoolFixture() *schoolFixture {
	s := newMockStore()
	f := &schoolFixture{
		store:     s,
		yearID:    "year-2024",
		class10ID: "class-10a1",
		class11ID: "class-11b2",
		subjectID: "subject-toan",
		teacherID: "teacher-lan",
		userID:    "user-lan",
	}

	s.years[f.yearID] = model.SchoolYear{SchoolYearID: f.yearID, Label: "2024-2025", Status: model.StatusActive}
	s.classes[f.class10ID] = model.Class{ClassID: f.class10ID, SchoolYearID: f.yearID, Name: "10A1", Grade: 10, Status: model.StatusActive}
	s.classes[f.class11ID] = model.Class{ClassID: f.class11ID, SchoolYearID: f.yearID, Name: "11B2", Grade: 11, Status: model.StatusActive}
	s.subjects[f.subjectID] = model.Subject{SubjectID: f.subjectID, SchoolYearID: f.yearID, Name: "Toán", Status: model.StatusActive}
	s.users[f.userID] = model.User{UserID: f.userID, Username: "lan", Name: "Nguyễn Thị Lan", Role: model.RoleTeacher}
	s.teachers[f.teacherID] = model.Teacher{
		TeacherID:       f.teacherID,
		SchoolYearID:    f.yearID,
		Name:            "Nguyễn Thị Lan",
		Phone:           strPtr("0912345678"),
		UserID:          strPtr(f.userID),
		HomeroomClassID: f.class10ID,
		Status:          model.StatusActive,
		Subjects:        []model.Subject{{SubjectID: f.subjectID}},
	}

	start := date(2024, 9, 2)
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("week-%d", i+1)
		s.weeks[id] = model.Week{
			WeekID:       id,
			SchoolYearID: f.yearID,
			WeekNumber:   i + 1,
			StartDate:    start.AddDate(0, 0, 7*i),
			EndDate:      start.AddDate(0, 0, 7*i+6),
			Status:       model.StatusActive,
		}
		f.weekIDs = append(f.weekIDs, id)
	}
	return f
}

func (f *schoolFixture) addRecord(id, teacherID, weekID, classID string, periods int, recordType string) {
	f.store.records[id] = model.TeachingRecord{
		RecordID:     id,
		TeacherID:    teacherID,
		WeekID:       weekID,
		SubjectID:    f.subjectID,
		ClassID:      classID,
		SchoolYearID: f.yearID,
		Periods:      periods,
		RecordType:   recordType,
	}
}

func adminCaller() Caller {
	return Caller{UserID: "admin-1", Role: model.RoleAdmin}
}

func (f *schoolFixture) teacherCaller() Caller {
	return Caller{UserID: f.userID, Role: model.RoleTeacher, TeacherID: f.teacherID}
}
