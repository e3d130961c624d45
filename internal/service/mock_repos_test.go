package service

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"result-generator/backend/internal/grading"
	"result-generator/backend/internal/model"
	"result-generator/backend/internal/repository"
)

// mockNow 测试中固定的重算时间
var mockNow = time.Date(2025, 3, 31, 10, 0, 0, 0, time.UTC)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User // key: user_id
	seq   int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		m.seq++
		user.UserID = fmt.Sprintf("user-%d", m.seq)
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = mockNow
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByStudentID(_ context.Context, studentID string) (*model.User, error) {
	for _, u := range m.users {
		if u.LinkedStudentID() == studentID {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) List(_ context.Context, role string, offset, limit int) ([]model.User, int64, error) {
	var all []model.User
	for _, u := range m.users {
		if role != "" && u.Role != role {
			continue
		}
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].UserID < all[j].UserID })

	total := int64(len(all))
	if offset >= len(all) {
		return []model.User{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockUserRepo) CountActiveByRole(_ context.Context, role string) (int64, error) {
	var n int64
	for _, u := range m.users {
		if u.Role == role && u.IsActive {
			n++
		}
	}
	return n, nil
}

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	students map[string]*model.Student // key: student_id
	seq      int
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: make(map[string]*model.Student)}
}

func (m *mockStudentRepo) Create(_ context.Context, student *model.Student) error {
	for _, s := range m.students {
		if s.Admission == student.Admission {
			return gorm.ErrDuplicatedKey
		}
	}
	if student.StudentID == "" {
		m.seq++
		student.StudentID = fmt.Sprintf("stu-%d", m.seq)
	}
	if student.CreatedAt.IsZero() {
		student.CreatedAt = mockNow
	}
	m.students[student.StudentID] = student
	return nil
}

func (m *mockStudentRepo) GetByID(_ context.Context, id string) (*model.Student, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) GetByAdmission(_ context.Context, admission string) (*model.Student, error) {
	for _, s := range m.students {
		if s.Admission == admission {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) List(_ context.Context, filter repository.StudentFilter, offset, limit int) ([]model.Student, int64, error) {
	var all []model.Student
	for _, s := range m.students {
		if !s.IsActive {
			continue
		}
		if filter.Class != "" && s.Class != filter.Class {
			continue
		}
		if filter.Section != "" && s.Section != strings.ToUpper(filter.Section) {
			continue
		}
		if filter.Search != "" {
			q := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(s.Name), q) && !strings.Contains(strings.ToLower(s.Admission), q) {
				continue
			}
		}
		all = append(all, *s)
	}
	sortStudents(all)

	total := int64(len(all))
	if offset >= len(all) {
		return []model.Student{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockStudentRepo) ListByClass(_ context.Context, class, section string) ([]model.Student, error) {
	var out []model.Student
	for _, s := range m.students {
		if !s.IsActive || s.Class != class {
			continue
		}
		if section != "" && s.Section != strings.ToUpper(section) {
			continue
		}
		out = append(out, *s)
	}
	sortStudents(out)
	return out, nil
}

func (m *mockStudentRepo) Update(_ context.Context, student *model.Student) error {
	if _, ok := m.students[student.StudentID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.students[student.StudentID] = student
	return nil
}

func (m *mockStudentRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.students[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.students, id)
	return nil
}

func (m *mockStudentRepo) LatestAdmission(_ context.Context, prefix string) (string, error) {
	pattern := regexp.MustCompile("^" + regexp.QuoteMeta(prefix) + `[0-9]+$`)
	latest := ""
	for _, s := range m.students {
		if !pattern.MatchString(s.Admission) {
			continue
		}
		if len(s.Admission) > len(latest) || (len(s.Admission) == len(latest) && s.Admission > latest) {
			latest = s.Admission
		}
	}
	return latest, nil
}

func sortStudents(list []model.Student) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Class != list[j].Class {
			return list[i].Class < list[j].Class
		}
		if list[i].Section != list[j].Section {
			return list[i].Section < list[j].Section
		}
		return list[i].Roll < list[j].Roll
	})
}

// ── Mock ResultRepository ──

// mockResultRepo 与 GORM 实现一致：Create/Save 前重算
type mockResultRepo struct {
	results  map[string]*model.Result // key: student_id
	students *mockStudentRepo
	seq      int
	saves    int
}

func newMockResultRepo(students *mockStudentRepo) *mockResultRepo {
	return &mockResultRepo{results: make(map[string]*model.Result), students: students}
}

func (m *mockResultRepo) Create(_ context.Context, result *model.Result) error {
	if _, ok := m.results[result.StudentID]; ok {
		return gorm.ErrDuplicatedKey
	}
	if result.ResultID == "" {
		m.seq++
		result.ResultID = fmt.Sprintf("res-%d", m.seq)
	}
	grading.Recalculate(result, mockNow)
	m.results[result.StudentID] = result
	m.saves++
	return nil
}

func (m *mockResultRepo) GetByStudentID(_ context.Context, studentID string) (*model.Result, error) {
	r, ok := m.results[studentID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if s, ok := m.students.students[studentID]; ok {
		r.Student = s
	}
	return r, nil
}

func (m *mockResultRepo) Save(_ context.Context, result *model.Result) error {
	grading.Recalculate(result, mockNow)
	m.results[result.StudentID] = result
	m.saves++
	return nil
}

func (m *mockResultRepo) ListByClass(_ context.Context, class, section string) ([]model.Result, error) {
	var out []model.Result
	for id, r := range m.results {
		if r.Class != class {
			continue
		}
		if section != "" && r.Section != strings.ToUpper(section) {
			continue
		}
		cp := *r
		cp.Student = m.students.students[id]
		out = append(out, cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Percentage > out[j].Percentage })
	return out, nil
}

func (m *mockResultRepo) DeleteByStudentID(_ context.Context, studentID string) error {
	delete(m.results, studentID)
	return nil
}

// ── Mock ClassSubjectRepository ──

type mockClassSubjectRepo struct {
	items map[string]*model.ClassSubject // key: class_name
}

func newMockClassSubjectRepo() *mockClassSubjectRepo {
	return &mockClassSubjectRepo{items: make(map[string]*model.ClassSubject)}
}

func (m *mockClassSubjectRepo) Upsert(_ context.Context, cs *model.ClassSubject) error {
	if existing, ok := m.items[cs.ClassName]; ok {
		existing.Subjects = cs.Subjects
		existing.UpdatedBy = cs.UpdatedBy
		return nil
	}
	m.items[cs.ClassName] = cs
	return nil
}

func (m *mockClassSubjectRepo) GetByClass(_ context.Context, className string) (*model.ClassSubject, error) {
	if cs, ok := m.items[className]; ok {
		return cs, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockClassSubjectRepo) List(_ context.Context) ([]model.ClassSubject, error) {
	var out []model.ClassSubject
	for _, cs := range m.items {
		out = append(out, *cs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClassName < out[j].ClassName })
	return out, nil
}

// ── 测试辅助 ──

type mockRepos struct {
	users    *mockUserRepo
	students *mockStudentRepo
	results  *mockResultRepo
	subjects *mockClassSubjectRepo
}

// newMockRepository 组装内存版 Repository 聚合（无数据库连接，事务为空操作）
func newMockRepository() (*repository.Repository, *mockRepos) {
	students := newMockStudentRepo()
	m := &mockRepos{
		users:    newMockUserRepo(),
		students: students,
		results:  newMockResultRepo(students),
		subjects: newMockClassSubjectRepo(),
	}
	repo := &repository.Repository{
		User:         m.users,
		Student:      m.students,
		Result:       m.results,
		ClassSubject: m.subjects,
	}
	return repo, m
}

// seedStudent 直接写入学生与空成绩记录
func (m *mockRepos) seedStudent(name, admission, class, section string) *model.Student {
	s := &model.Student{
		Name:      name,
		Admission: admission,
		Roll:      "1",
		Session:   "2024-25",
		Class:     class,
		Section:   section,
		IsActive:  true,
	}
	_ = m.students.Create(context.Background(), s)
	_ = m.results.Create(context.Background(), model.NewResultFor(s))
	return s
}
