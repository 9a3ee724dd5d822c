package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"exampro/internal/apperr"
	"exampro/internal/model"
)

// Memory is a process-local Repository used by tests and STORE=memory.
// It enforces the same unique keys, references and cascades as the schema.
type Memory struct {
	mu  sync.RWMutex
	now func() time.Time

	seq      int64
	users    map[int64]model.User
	students map[int64]model.Student
	teachers map[int64]model.Teacher
	filieres map[int64]model.Filiere
	modules  map[int64]model.Module
	grades   map[int64]model.Grade
	exams    map[int64]model.Exam
	settings map[string]model.Setting
}

var _ Repository = (*Memory)(nil)

func NewMemory() *Memory {
	m := &Memory{
		now:      time.Now,
		users:    map[int64]model.User{},
		students: map[int64]model.Student{},
		teachers: map[int64]model.Teacher{},
		filieres: map[int64]model.Filiere{},
		modules:  map[int64]model.Module{},
		grades:   map[int64]model.Grade{},
		exams:    map[int64]model.Exam{},
		settings: map[string]model.Setting{},
	}
	for _, s := range DefaultSettings {
		m.settings[s.Key] = model.Setting{Key: s.Key, Value: s.Value, UpdatedAt: m.now().UTC()}
	}
	return m
}

// DefaultSettings mirrors the rows seeded by the schema script.
var DefaultSettings = []model.Setting{
	{Key: "school_name", Value: "ExamPro"},
	{Key: "academic_year", Value: "2025-2026"},
	{Key: "passing_grade", Value: "10"},
}

// WithClock swaps the time source used for created and enrollment dates.
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.now = now
	return m
}

func (m *Memory) nextID() int64 {
	m.seq++
	return m.seq
}

func (m *Memory) today() time.Time {
	now := m.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) GetUserByEmail(_ context.Context, email string) (model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	email = normalizeEmail(email)
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return model.User{}, apperr.NotFound("user_not_found")
}

func (m *Memory) GetUserByID(_ context.Context, id int64) (model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return model.User{}, apperr.NotFound("user_not_found")
	}
	return user, nil
}

func (m *Memory) ListUsers(context.Context) ([]model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	users := make([]model.User, 0, len(m.users))
	for _, user := range m.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.After(users[j].CreatedAt)
		}
		return users[i].ID > users[j].ID
	})
	return users, nil
}

func (m *Memory) insertUser(user model.User) (model.User, error) {
	user.Email = normalizeEmail(user.Email)
	user.Name = strings.TrimSpace(user.Name)
	if !user.Role.Valid() {
		return model.User{}, apperr.Validation("validation_failed")
	}
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return model.User{}, apperr.Conflict("already_exists")
		}
	}
	user.ID = m.nextID()
	user.CreatedAt = m.now().UTC()
	m.users[user.ID] = user
	return user, nil
}

func (m *Memory) CreateUser(_ context.Context, user model.User) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	created, err := m.insertUser(user)
	if err != nil {
		return model.User{}, err
	}
	if created.Role == model.RoleTeacher {
		id := m.nextID()
		m.teachers[id] = model.Teacher{ID: id, UserID: created.ID}
	}
	return created, nil
}

func (m *Memory) SetPassword(_ context.Context, userID int64, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return apperr.NotFound("user_not_found")
	}
	user.PasswordHash = passwordHash
	m.users[userID] = user
	return nil
}

func (m *Memory) DeleteUser(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return apperr.NotFound("user_not_found")
	}
	delete(m.users, id)
	for studentID, student := range m.students {
		if student.UserID != id {
			continue
		}
		delete(m.students, studentID)
		for gradeID, grade := range m.grades {
			if grade.StudentID == studentID {
				delete(m.grades, gradeID)
			}
		}
	}
	for teacherID, teacher := range m.teachers {
		if teacher.UserID != id {
			continue
		}
		delete(m.teachers, teacherID)
		for moduleID, module := range m.modules {
			if module.TeacherID != nil && *module.TeacherID == teacherID {
				module.TeacherID = nil
				m.modules[moduleID] = module
			}
		}
	}
	return nil
}

func (m *Memory) joinStudent(student model.Student) model.Student {
	user := m.users[student.UserID]
	student.Name = user.Name
	student.Email = user.Email
	student.FiliereName = m.filieres[student.FiliereID].Name
	return student
}

func (m *Memory) ListStudents(context.Context) ([]model.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	students := make([]model.Student, 0, len(m.students))
	for _, student := range m.students {
		students = append(students, m.joinStudent(student))
	}
	sort.Slice(students, func(i, j int) bool {
		if students[i].Name != students[j].Name {
			return students[i].Name < students[j].Name
		}
		return students[i].ID < students[j].ID
	})
	return students, nil
}

func (m *Memory) CreateStudent(_ context.Context, input NewStudent) (model.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.filieres[input.FiliereID]; !ok {
		return model.Student{}, apperr.NotFound("reference_not_found")
	}
	user, err := m.insertUser(model.User{
		Email:        input.Email,
		PasswordHash: input.PasswordHash,
		Role:         model.RoleStudent,
		Name:         input.Name,
	})
	if err != nil {
		return model.Student{}, err
	}
	today := m.today()
	student := model.Student{
		ID:             m.nextID(),
		UserID:         user.ID,
		FiliereID:      input.FiliereID,
		StudentNumber:  StudentNumber(today.Year(), user.ID),
		EnrollmentDate: today,
	}
	m.students[student.ID] = student
	return m.joinStudent(student), nil
}

func (m *Memory) ListTeachers(context.Context) ([]model.Teacher, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	teachers := make([]model.Teacher, 0, len(m.teachers))
	for _, teacher := range m.teachers {
		user := m.users[teacher.UserID]
		teacher.Name = user.Name
		teacher.Email = user.Email
		teachers = append(teachers, teacher)
	}
	sort.Slice(teachers, func(i, j int) bool {
		if teachers[i].Name != teachers[j].Name {
			return teachers[i].Name < teachers[j].Name
		}
		return teachers[i].ID < teachers[j].ID
	})
	return teachers, nil
}

func (m *Memory) ListFilieres(context.Context) ([]model.Filiere, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	filieres := make([]model.Filiere, 0, len(m.filieres))
	for _, filiere := range m.filieres {
		filieres = append(filieres, filiere)
	}
	sort.Slice(filieres, func(i, j int) bool {
		if filieres[i].Name != filieres[j].Name {
			return filieres[i].Name < filieres[j].Name
		}
		return filieres[i].ID < filieres[j].ID
	})
	return filieres, nil
}

func (m *Memory) CreateFiliere(_ context.Context, filiere model.Filiere) (model.Filiere, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.filieres {
		if existing.Code == filiere.Code {
			return model.Filiere{}, apperr.Conflict("already_exists")
		}
	}
	filiere.ID = m.nextID()
	m.filieres[filiere.ID] = filiere
	return filiere, nil
}

func (m *Memory) joinModule(module model.Module) model.Module {
	module.FiliereName = m.filieres[module.FiliereID].Name
	module.TeacherName = nil
	if module.TeacherID != nil {
		if teacher, ok := m.teachers[*module.TeacherID]; ok {
			name := m.users[teacher.UserID].Name
			module.TeacherName = &name
		}
	}
	return module
}

func (m *Memory) ListModules(context.Context) ([]model.Module, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	modules := make([]model.Module, 0, len(m.modules))
	for _, module := range m.modules {
		modules = append(modules, m.joinModule(module))
	}
	sort.Slice(modules, func(i, j int) bool {
		if modules[i].FiliereName != modules[j].FiliereName {
			return modules[i].FiliereName < modules[j].FiliereName
		}
		if modules[i].Name != modules[j].Name {
			return modules[i].Name < modules[j].Name
		}
		return modules[i].ID < modules[j].ID
	})
	return modules, nil
}

func (m *Memory) CreateModule(_ context.Context, module model.Module) (model.Module, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.filieres[module.FiliereID]; !ok {
		return model.Module{}, apperr.NotFound("reference_not_found")
	}
	if module.TeacherID != nil {
		if _, ok := m.teachers[*module.TeacherID]; !ok {
			return model.Module{}, apperr.NotFound("reference_not_found")
		}
	}
	for _, existing := range m.modules {
		if existing.Code == module.Code {
			return model.Module{}, apperr.Conflict("already_exists")
		}
	}
	module.ID = m.nextID()
	m.modules[module.ID] = module
	return m.joinModule(module), nil
}

func (m *Memory) joinGrade(grade model.Grade) model.Grade {
	student := m.students[grade.StudentID]
	module := m.modules[grade.ModuleID]
	grade.StudentName = m.users[student.UserID].Name
	grade.ModuleName = module.Name
	grade.ModuleCode = module.Code
	return grade
}

func (m *Memory) UpsertGrade(_ context.Context, studentID, moduleID int64, score float64, status model.GradeStatus) (model.Grade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.students[studentID]; !ok {
		return model.Grade{}, apperr.NotFound("reference_not_found")
	}
	if _, ok := m.modules[moduleID]; !ok {
		return model.Grade{}, apperr.NotFound("reference_not_found")
	}
	var grade model.Grade
	found := false
	for _, existing := range m.grades {
		if existing.StudentID == studentID && existing.ModuleID == moduleID {
			grade = existing
			found = true
			break
		}
	}
	if !found {
		grade = model.Grade{ID: m.nextID(), StudentID: studentID, ModuleID: moduleID}
	}
	grade.Score = score
	grade.Status = status
	grade.ExamDate = m.today()
	m.grades[grade.ID] = grade
	return m.joinGrade(grade), nil
}

func (m *Memory) filterGrades(keep func(model.Grade) bool) []model.Grade {
	m.mu.RLock()
	defer m.mu.RUnlock()
	grades := []model.Grade{}
	for _, grade := range m.grades {
		if keep(grade) {
			grades = append(grades, m.joinGrade(grade))
		}
	}
	sort.Slice(grades, func(i, j int) bool { return grades[i].ID < grades[j].ID })
	return grades
}

func (m *Memory) ListGrades(context.Context) ([]model.Grade, error) {
	return m.filterGrades(func(model.Grade) bool { return true }), nil
}

func (m *Memory) ListGradesForUser(_ context.Context, userID int64) ([]model.Grade, error) {
	return m.filterGrades(func(grade model.Grade) bool {
		return m.students[grade.StudentID].UserID == userID
	}), nil
}

func (m *Memory) ListGradesForStudent(_ context.Context, studentID int64) ([]model.Grade, error) {
	return m.filterGrades(func(grade model.Grade) bool {
		return grade.StudentID == studentID
	}), nil
}

func (m *Memory) joinExam(exam model.Exam) model.Exam {
	module := m.modules[exam.ModuleID]
	exam.ModuleName = module.Name
	exam.ModuleCode = module.Code
	exam.FiliereName = m.filieres[module.FiliereID].Name
	return exam
}

func (m *Memory) ListExams(context.Context) ([]model.Exam, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	exams := make([]model.Exam, 0, len(m.exams))
	for _, exam := range m.exams {
		exams = append(exams, m.joinExam(exam))
	}
	sort.Slice(exams, func(i, j int) bool {
		if !exams[i].ExamDate.Equal(exams[j].ExamDate) {
			return exams[i].ExamDate.Before(exams[j].ExamDate)
		}
		if exams[i].ExamTime != exams[j].ExamTime {
			return exams[i].ExamTime < exams[j].ExamTime
		}
		return exams[i].ID < exams[j].ID
	})
	return exams, nil
}

func (m *Memory) CreateExam(_ context.Context, exam model.Exam) (model.Exam, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.modules[exam.ModuleID]; !ok {
		return model.Exam{}, apperr.NotFound("reference_not_found")
	}
	exam.ID = m.nextID()
	if exam.Status == "" {
		exam.Status = model.ExamUpcoming
	}
	m.exams[exam.ID] = exam
	return m.joinExam(exam), nil
}

func (m *Memory) MarkPastExamsFinished(_ context.Context, today time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var closed int64
	for id, exam := range m.exams {
		if exam.Status == model.ExamUpcoming && exam.ExamDate.Before(today) {
			exam.Status = model.ExamFinished
			m.exams[id] = exam
			closed++
		}
	}
	return closed, nil
}

func (m *Memory) ListSettings(context.Context) ([]model.Setting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	settings := make([]model.Setting, 0, len(m.settings))
	for _, setting := range m.settings {
		settings = append(settings, setting)
	}
	sort.Slice(settings, func(i, j int) bool { return settings[i].Key < settings[j].Key })
	return settings, nil
}

func (m *Memory) UpdateSetting(_ context.Context, key, value string) (model.Setting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	setting, ok := m.settings[key]
	if !ok {
		return model.Setting{}, apperr.NotFound("setting_not_found")
	}
	setting.Value = value
	setting.UpdatedAt = m.now().UTC()
	m.settings[key] = setting
	return setting, nil
}
