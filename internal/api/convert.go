package api

import (
	"time"

	"exampro/internal/model"
)

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

func NewUser(u model.User) User {
	out := User{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
	if !u.CreatedAt.IsZero() {
		created := u.CreatedAt
		out.CreatedAt = &created
	}
	return out
}

func NewStudent(s model.Student) Student {
	return Student{
		ID:             s.ID,
		UserID:         s.UserID,
		Name:           s.Name,
		Email:          s.Email,
		FiliereID:      s.FiliereID,
		FiliereName:    s.FiliereName,
		StudentNumber:  s.StudentNumber,
		EnrollmentDate: formatDate(s.EnrollmentDate),
	}
}

func NewTeacher(t model.Teacher) Teacher {
	return Teacher{ID: t.ID, UserID: t.UserID, Name: t.Name, Email: t.Email, Speciality: t.Speciality}
}

func NewFiliere(f model.Filiere) Filiere {
	return Filiere{ID: f.ID, Name: f.Name, Code: f.Code, Duration: f.Duration}
}

func NewModule(m model.Module) Module {
	return Module{
		ID:          m.ID,
		Name:        m.Name,
		Code:        m.Code,
		FiliereID:   m.FiliereID,
		FiliereName: m.FiliereName,
		TeacherID:   m.TeacherID,
		TeacherName: m.TeacherName,
		Coefficient: m.Coefficient,
		Semester:    m.Semester,
	}
}

func NewGrade(g model.Grade) Grade {
	return Grade{
		ID:          g.ID,
		StudentID:   g.StudentID,
		ModuleID:    g.ModuleID,
		Score:       g.Score,
		Status:      g.Status,
		ExamDate:    formatDate(g.ExamDate),
		StudentName: g.StudentName,
		ModuleName:  g.ModuleName,
		ModuleCode:  g.ModuleCode,
	}
}

func NewExam(e model.Exam) Exam {
	return Exam{
		ID:              e.ID,
		ModuleID:        e.ModuleID,
		ModuleName:      e.ModuleName,
		ModuleCode:      e.ModuleCode,
		FiliereName:     e.FiliereName,
		ExamDate:        formatDate(e.ExamDate),
		ExamTime:        e.ExamTime,
		Room:            e.Room,
		DurationMinutes: e.DurationMinutes,
		Status:          e.Status,
	}
}

func NewSetting(s model.Setting) Setting {
	return Setting{Key: s.Key, Value: s.Value, UpdatedAt: s.UpdatedAt}
}

// Grade converts a wire grade back into the domain type.
func (g Grade) Model() model.Grade {
	date, _ := time.Parse(DateLayout, g.ExamDate)
	return model.Grade{
		ID:          g.ID,
		StudentID:   g.StudentID,
		ModuleID:    g.ModuleID,
		Score:       g.Score,
		Status:      g.Status,
		ExamDate:    date,
		StudentName: g.StudentName,
		ModuleName:  g.ModuleName,
		ModuleCode:  g.ModuleCode,
	}
}

// Date parses ExamDate; the zero time is returned when it is malformed.
func (e Exam) Date() time.Time {
	date, _ := time.Parse(DateLayout, e.ExamDate)
	return date
}

// Convert a slice with one of the constructors above.
func Map[In, Out any](in []In, fn func(In) Out) []Out {
	out := make([]Out, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}
