package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"teaching-hours/backend/internal/model"
	"teaching-hours/backend/internal/repository"
)

// mockStore in-memory tables shared by the mock repositories. Getters return copies
// so services only change stored rows through Update, as with a real database.
type mockStore struct {
	seq int

	users    map[string]model.User
	years    map[string]model.SchoolYear
	weeks    map[string]model.Week
	classes  map[string]model.Class
	subjects map[string]model.Subject
	teachers map[string]model.Teacher
	records  map[string]model.TeachingRecord
}

func newMockStore() *mockStore {
	return &mockStore{
		users:    make(map[string]model.User),
		years:    make(map[string]model.SchoolYear),
		weeks:    make(map[string]model.Week),
		classes:  make(map[string]model.Class),
		subjects: make(map[string]model.Subject),
		teachers: make(map[string]model.Teacher),
		records:  make(map[string]model.TeachingRecord),
	}
}

func (s *mockStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

// repo builds a Repository without a database handle, so BeginTx yields a nil tx
func (s *mockStore) repo() *repository.Repository {
	return &repository.Repository{
		User:           &mockUserRepo{s},
		SchoolYear:     &mockSchoolYearRepo{s},
		Week:           &mockWeekRepo{s},
		Class:          &mockClassRepo{s},
		Subject:        &mockSubjectRepo{s},
		Teacher:        &mockTeacherRepo{s},
		TeachingRecord: &mockRecordRepo{s},
	}
}

// ── Mock UserRepository ──

type mockUserRepo struct{ s *mockStore }

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.s.users {
		if u.Username == user.Username {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.UserID == "" {
		user.UserID = m.s.nextID("user")
	}
	m.s.users[user.UserID] = *user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.s.users[id]; ok {
		return &u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.s.users[user.UserID] = *user
	return nil
}

func (m *mockUserRepo) List(_ context.Context, role, keyword string, offset, limit int) ([]model.User, int64, error) {
	var result []model.User
	for _, u := range m.s.users {
		if role != "" && u.Role != role {
			continue
		}
		if keyword != "" && !strings.Contains(u.Username, keyword) && !strings.Contains(u.Name, keyword) {
			continue
		}
		result = append(result, u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Username < result[j].Username })
	return page(result, offset, limit), int64(len(result)), nil
}

func (m *mockUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.s.users)), nil
}

// ── Mock SchoolYearRepository ──

type mockSchoolYearRepo struct{ s *mockStore }

func (m *mockSchoolYearRepo) Create(_ context.Context, year *model.SchoolYear) error {
	for _, y := range m.s.years {
		if y.Label == year.Label {
			return gorm.ErrDuplicatedKey
		}
	}
	if year.SchoolYearID == "" {
		year.SchoolYearID = m.s.nextID("year")
	}
	m.s.years[year.SchoolYearID] = *year
	return nil
}

func (m *mockSchoolYearRepo) GetByID(_ context.Context, id string) (*model.SchoolYear, error) {
	if y, ok := m.s.years[id]; ok {
		return &y, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSchoolYearRepo) GetByLabel(_ context.Context, label string) (*model.SchoolYear, error) {
	for _, y := range m.s.years {
		if y.Label == label {
			return &y, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSchoolYearRepo) GetActive(_ context.Context) (*model.SchoolYear, error) {
	var found *model.SchoolYear
	for _, y := range m.s.years {
		y := y
		if y.Status == model.StatusActive && (found == nil || y.Label > found.Label) {
			found = &y
		}
	}
	if found == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return found, nil
}

func (m *mockSchoolYearRepo) List(_ context.Context) ([]model.SchoolYear, error) {
	var result []model.SchoolYear
	for _, y := range m.s.years {
		result = append(result, y)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Label > result[j].Label })
	return result, nil
}

func (m *mockSchoolYearRepo) Update(_ context.Context, year *model.SchoolYear) error {
	m.s.years[year.SchoolYearID] = *year
	return nil
}

func (m *mockSchoolYearRepo) Delete(_ context.Context, id string) error {
	delete(m.s.years, id)
	return nil
}

// ── Mock WeekRepository ──

type mockWeekRepo struct{ s *mockStore }

func (m *mockWeekRepo) Create(_ context.Context, week *model.Week) error {
	if week.WeekID == "" {
		week.WeekID = m.s.nextID("week")
	}
	m.s.weeks[week.WeekID] = *week
	return nil
}

func (m *mockWeekRepo) BatchCreate(ctx context.Context, weeks []model.Week) error {
	for i := range weeks {
		if err := m.Create(ctx, &weeks[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockWeekRepo) GetByID(_ context.Context, id string) (*model.Week, error) {
	if w, ok := m.s.weeks[id]; ok {
		return &w, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWeekRepo) ListBySchoolYear(_ context.Context, schoolYearID, status string) ([]model.Week, error) {
	var result []model.Week
	for _, w := range m.s.weeks {
		if w.SchoolYearID != schoolYearID || (status != "" && w.Status != status) {
			continue
		}
		result = append(result, w)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].StartDate.Equal(result[j].StartDate) {
			return result[i].StartDate.Before(result[j].StartDate)
		}
		return result[i].WeekNumber < result[j].WeekNumber
	})
	return result, nil
}

func (m *mockWeekRepo) Update(_ context.Context, week *model.Week) error {
	m.s.weeks[week.WeekID] = *week
	return nil
}

func (m *mockWeekRepo) UpdateNumber(_ context.Context, id string, number int) error {
	w, ok := m.s.weeks[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	w.WeekNumber = number
	m.s.weeks[id] = w
	return nil
}

func (m *mockWeekRepo) Delete(_ context.Context, id string) error {
	delete(m.s.weeks, id)
	return nil
}

func (m *mockWeekRepo) DeleteBySchoolYear(_ context.Context, schoolYearID string) error {
	for id, w := range m.s.weeks {
		if w.SchoolYearID == schoolYearID {
			delete(m.s.weeks, id)
		}
	}
	return nil
}

// ── Mock ClassRepository ──

type mockClassRepo struct{ s *mockStore }

func (m *mockClassRepo) Create(_ context.Context, class *model.Class) error {
	for _, c := range m.s.classes {
		if c.SchoolYearID == class.SchoolYearID && c.Name == class.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	if class.ClassID == "" {
		class.ClassID = m.s.nextID("class")
	}
	m.s.classes[class.ClassID] = *class
	return nil
}

func (m *mockClassRepo) GetByID(_ context.Context, id string) (*model.Class, error) {
	if c, ok := m.s.classes[id]; ok {
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockClassRepo) GetByName(_ context.Context, schoolYearID, name string) (*model.Class, error) {
	for _, c := range m.s.classes {
		if c.SchoolYearID == schoolYearID && c.Name == name {
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockClassRepo) ListBySchoolYear(_ context.Context, schoolYearID string, grade int) ([]model.Class, error) {
	var result []model.Class
	for _, c := range m.s.classes {
		if c.SchoolYearID == schoolYearID && (grade == 0 || c.Grade == grade) {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Grade != result[j].Grade {
			return result[i].Grade > result[j].Grade
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (m *mockClassRepo) Update(_ context.Context, class *model.Class) error {
	m.s.classes[class.ClassID] = *class
	return nil
}

func (m *mockClassRepo) Delete(_ context.Context, id string) error {
	delete(m.s.classes, id)
	return nil
}

func (m *mockClassRepo) DeleteBySchoolYear(_ context.Context, schoolYearID string) error {
	for id, c := range m.s.classes {
		if c.SchoolYearID == schoolYearID {
			delete(m.s.classes, id)
		}
	}
	return nil
}

// ── Mock SubjectRepository ──

type mockSubjectRepo struct{ s *mockStore }

func (m *mockSubjectRepo) Create(_ context.Context, subject *model.Subject) error {
	for _, sub := range m.s.subjects {
		if sub.SchoolYearID == subject.SchoolYearID && sub.Name == subject.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	if subject.SubjectID == "" {
		subject.SubjectID = m.s.nextID("subject")
	}
	m.s.subjects[subject.SubjectID] = *subject
	return nil
}

func (m *mockSubjectRepo) GetByID(_ context.Context, id string) (*model.Subject, error) {
	if sub, ok := m.s.subjects[id]; ok {
		return &sub, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubjectRepo) GetByName(_ context.Context, schoolYearID, name string) (*model.Subject, error) {
	for _, sub := range m.s.subjects {
		if sub.SchoolYearID == schoolYearID && sub.Name == name {
			return &sub, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubjectRepo) GetByIDs(_ context.Context, ids []string) ([]model.Subject, error) {
	var result []model.Subject
	seen := make(map[string]bool)
	for _, id := range ids {
		if sub, ok := m.s.subjects[id]; ok && !seen[id] {
			seen[id] = true
			result = append(result, sub)
		}
	}
	return result, nil
}

func (m *mockSubjectRepo) ListBySchoolYear(_ context.Context, schoolYearID string) ([]model.Subject, error) {
	var result []model.Subject
	for _, sub := range m.s.subjects {
		if sub.SchoolYearID == schoolYearID {
			result = append(result, sub)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockSubjectRepo) Update(_ context.Context, subject *model.Subject) error {
	m.s.subjects[subject.SubjectID] = *subject
	return nil
}

func (m *mockSubjectRepo) Delete(_ context.Context, id string) error {
	delete(m.s.subjects, id)
	return nil
}

func (m *mockSubjectRepo) DeleteBySchoolYear(_ context.Context, schoolYearID string) error {
	for id, sub := range m.s.subjects {
		if sub.SchoolYearID == schoolYearID {
			delete(m.s.subjects, id)
		}
	}
	return nil
}

// ── Mock TeacherRepository ──

type mockTeacherRepo struct{ s *mockStore }

func (m *mockTeacherRepo) Create(_ context.Context, teacher *model.Teacher) error {
	for _, t := range m.s.teachers {
		if teacher.Phone != nil && t.Phone != nil && *t.Phone == *teacher.Phone {
			return gorm.ErrDuplicatedKey
		}
		if teacher.UserID != nil && t.UserID != nil && *t.UserID == *teacher.UserID {
			return gorm.ErrDuplicatedKey
		}
	}
	if teacher.TeacherID == "" {
		teacher.TeacherID = m.s.nextID("teacher")
	}
	stored := *teacher
	stored.HomeroomClass = nil
	m.s.teachers[teacher.TeacherID] = stored
	return nil
}

// withAssociations mimics the Preload calls of the real repository
func (m *mockTeacherRepo) withAssociations(t model.Teacher) *model.Teacher {
	if c, ok := m.s.classes[t.HomeroomClassID]; ok {
		t.HomeroomClass = &c
	}
	subjects := make([]model.Subject, 0, len(t.Subjects))
	for _, sub := range t.Subjects {
		if stored, ok := m.s.subjects[sub.SubjectID]; ok {
			subjects = append(subjects, stored)
		}
	}
	t.Subjects = subjects
	return &t
}

func (m *mockTeacherRepo) GetByID(_ context.Context, id string) (*model.Teacher, error) {
	if t, ok := m.s.teachers[id]; ok {
		return m.withAssociations(t), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeacherRepo) GetByUserID(_ context.Context, userID string) (*model.Teacher, error) {
	for _, t := range m.s.teachers {
		if t.UserID != nil && *t.UserID == userID {
			return m.withAssociations(t), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeacherRepo) GetByPhone(_ context.Context, phone string) (*model.Teacher, error) {
	for _, t := range m.s.teachers {
		if t.Phone != nil && *t.Phone == phone {
			return m.withAssociations(t), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeacherRepo) GetByHomeroom(_ context.Context, schoolYearID, classID string) (*model.Teacher, error) {
	for _, t := range m.s.teachers {
		if t.SchoolYearID == schoolYearID && t.HomeroomClassID == classID {
			return m.withAssociations(t), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeacherRepo) List(ctx context.Context, schoolYearID, keyword string, offset, limit int) ([]model.Teacher, int64, error) {
	all, _ := m.ListBySchoolYear(ctx, schoolYearID)
	var result []model.Teacher
	for _, t := range all {
		if keyword == "" || strings.Contains(t.Name, keyword) || (t.Phone != nil && strings.Contains(*t.Phone, keyword)) {
			result = append(result, t)
		}
	}
	return page(result, offset, limit), int64(len(result)), nil
}

func (m *mockTeacherRepo) ListBySchoolYear(_ context.Context, schoolYearID string) ([]model.Teacher, error) {
	var result []model.Teacher
	for _, t := range m.s.teachers {
		if t.SchoolYearID == schoolYearID {
			result = append(result, *m.withAssociations(t))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockTeacherRepo) Update(_ context.Context, teacher *model.Teacher) error {
	stored := *teacher
	stored.HomeroomClass = nil
	stored.Subjects = m.s.teachers[teacher.TeacherID].Subjects
	m.s.teachers[teacher.TeacherID] = stored
	return nil
}

func (m *mockTeacherRepo) ReplaceSubjects(_ context.Context, teacher *model.Teacher, subjects []model.Subject) error {
	t, ok := m.s.teachers[teacher.TeacherID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	t.Subjects = append([]model.Subject(nil), subjects...)
	m.s.teachers[teacher.TeacherID] = t
	return nil
}

func (m *mockTeacherRepo) Delete(_ context.Context, id string) error {
	delete(m.s.teachers, id)
	return nil
}

func (m *mockTeacherRepo) DeleteBySchoolYear(_ context.Context, schoolYearID string) error {
	for id, t := range m.s.teachers {
		if t.SchoolYearID == schoolYearID {
			delete(m.s.teachers, id)
		}
	}
	return nil
}

func (m *mockTeacherRepo) ClearContacts(_ context.Context, schoolYearID string) error {
	for id, t := range m.s.teachers {
		if t.SchoolYearID == schoolYearID {
			t.Phone = nil
			t.UserID = nil
			m.s.teachers[id] = t
		}
	}
	return nil
}

// ── Mock TeachingRecordRepository ──

type mockRecordRepo struct{ s *mockStore }

func (m *mockRecordRepo) Create(_ context.Context, record *model.TeachingRecord) error {
	for _, r := range m.s.records {
		if r.TeacherID == record.TeacherID && r.WeekID == record.WeekID &&
			r.SubjectID == record.SubjectID && r.ClassID == record.ClassID {
			return gorm.ErrDuplicatedKey
		}
	}
	if record.RecordID == "" {
		record.RecordID = m.s.nextID("record")
	}
	stored := *record
	stored.Teacher, stored.Week, stored.Subject, stored.Class = nil, nil, nil, nil
	m.s.records[record.RecordID] = stored
	return nil
}

func (m *mockRecordRepo) withAssociations(r model.TeachingRecord) *model.TeachingRecord {
	if t, ok := m.s.teachers[r.TeacherID]; ok {
		r.Teacher = &t
	}
	if w, ok := m.s.weeks[r.WeekID]; ok {
		r.Week = &w
	}
	if sub, ok := m.s.subjects[r.SubjectID]; ok {
		r.Subject = &sub
	}
	if c, ok := m.s.classes[r.ClassID]; ok {
		r.Class = &c
	}
	return &r
}

func (m *mockRecordRepo) GetByID(_ context.Context, id string) (*model.TeachingRecord, error) {
	if r, ok := m.s.records[id]; ok {
		return m.withAssociations(r), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRecordRepo) GetByTuple(_ context.Context, teacherID, weekID, subjectID, classID string) (*model.TeachingRecord, error) {
	for _, r := range m.s.records {
		if r.TeacherID == teacherID && r.WeekID == weekID && r.SubjectID == subjectID && r.ClassID == classID {
			return m.withAssociations(r), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRecordRepo) List(_ context.Context, f repository.RecordFilter, offset, limit int) ([]model.TeachingRecord, int64, error) {
	var result []model.TeachingRecord
	for _, r := range m.s.records {
		if (f.SchoolYearID != "" && r.SchoolYearID != f.SchoolYearID) ||
			(f.TeacherID != "" && r.TeacherID != f.TeacherID) ||
			(f.WeekID != "" && r.WeekID != f.WeekID) ||
			(f.RecordType != "" && r.RecordType != f.RecordType) {
			continue
		}
		result = append(result, *m.withAssociations(r))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].RecordID < result[j].RecordID })
	return page(result, offset, limit), int64(len(result)), nil
}

func (m *mockRecordRepo) ListForExport(_ context.Context, teacherID, schoolYearID string, weekIDs []string) ([]model.TeachingRecord, error) {
	var allowed map[string]bool
	if weekIDs != nil {
		allowed = make(map[string]bool, len(weekIDs))
		for _, id := range weekIDs {
			allowed[id] = true
		}
	}
	var result []model.TeachingRecord
	for _, r := range m.s.records {
		if r.TeacherID != teacherID || r.SchoolYearID != schoolYearID {
			continue
		}
		if allowed != nil && !allowed[r.WeekID] {
			continue
		}
		result = append(result, *m.withAssociations(r))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].RecordID < result[j].RecordID })
	return result, nil
}

func (m *mockRecordRepo) Update(_ context.Context, record *model.TeachingRecord) error {
	stored := *record
	stored.Teacher, stored.Week, stored.Subject, stored.Class = nil, nil, nil, nil
	m.s.records[record.RecordID] = stored
	return nil
}

func (m *mockRecordRepo) Delete(_ context.Context, id string) error {
	delete(m.s.records, id)
	return nil
}

func (m *mockRecordRepo) DeleteBySchoolYear(_ context.Context, schoolYearID string) error {
	for id, r := range m.s.records {
		if r.SchoolYearID == schoolYearID {
			delete(m.s.records, id)
		}
	}
	return nil
}

func (m *mockRecordRepo) CountByWeek(_ context.Context, weekID string) (int64, error) {
	return m.count(func(r model.TeachingRecord) bool { return r.WeekID == weekID }), nil
}

func (m *mockRecordRepo) CountByClass(_ context.Context, classID string) (int64, error) {
	return m.count(func(r model.TeachingRecord) bool { return r.ClassID == classID }), nil
}

func (m *mockRecordRepo) CountBySubject(_ context.Context, subjectID string) (int64, error) {
	return m.count(func(r model.TeachingRecord) bool { return r.SubjectID == subjectID }), nil
}

func (m *mockRecordRepo) CountByTeacher(_ context.Context, teacherID string) (int64, error) {
	return m.count(func(r model.TeachingRecord) bool { return r.TeacherID == teacherID }), nil
}

func (m *mockRecordRepo) count(match func(model.TeachingRecord) bool) int64 {
	var n int64
	for _, r := range m.s.records {
		if match(r) {
			n++
		}
	}
	return n
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
