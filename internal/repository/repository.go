package repository

import (
	"context"
	"time"

	"exampro/internal/model"
)

// NewStudent is the input for enrolling a student together with its login.
type NewStudent struct {
	Name         string
	Email        string
	PasswordHash string
	FiliereID    int64
}

// Repository is implemented by the postgres Store and by Memory.
type Repository interface {
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	GetUserByID(ctx context.Context, id int64) (model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	CreateUser(ctx context.Context, user model.User) (model.User, error)
	SetPassword(ctx context.Context, userID int64, passwordHash string) error
	DeleteUser(ctx context.Context, id int64) error

	ListStudents(ctx context.Context) ([]model.Student, error)
	CreateStudent(ctx context.Context, input NewStudent) (model.Student, error)
	ListTeachers(ctx context.Context) ([]model.Teacher, error)

	ListFilieres(ctx context.Context) ([]model.Filiere, error)
	CreateFiliere(ctx context.Context, filiere model.Filiere) (model.Filiere, error)
	ListModules(ctx context.Context) ([]model.Module, error)
	CreateModule(ctx context.Context, module model.Module) (model.Module, error)

	UpsertGrade(ctx context.Context, studentID, moduleID int64, score float64, status model.GradeStatus) (model.Grade, error)
	ListGrades(ctx context.Context) ([]model.Grade, error)
	ListGradesForUser(ctx context.Context, userID int64) ([]model.Grade, error)
	ListGradesForStudent(ctx context.Context, studentID int64) ([]model.Grade, error)

	ListExams(ctx context.Context) ([]model.Exam, error)
	CreateExam(ctx context.Context, exam model.Exam) (model.Exam, error)
	MarkPastExamsFinished(ctx context.Context, today time.Time) (int64, error)

	ListSettings(ctx context.Context) ([]model.Setting, error)
	UpdateSetting(ctx context.Context, key, value string) (model.Setting, error)

	Ping(ctx context.Context) error
}

// StudentNumber formats the enrollment number from the year and the login id.
func StudentNumber(year int, userID int64) string {
	return "STU" + itoa(int64(year)) + pad4(userID)
}

func pad4(id int64) string {
	s := itoa(id)
	for len(s) < 4 {
		s = "0" + s
	}
	return s
}
