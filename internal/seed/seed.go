// Package seed loads the demonstration school: three filieres, one account
// per role and a handful of grades and exams.
package seed

import (
	"context"
	"fmt"
	"time"

	"exampro/internal/apperr"
	"exampro/internal/crypto"
	"exampro/internal/grades"
	"exampro/internal/model"
	"exampro/internal/repository"
)

// Account is a demo login created by Demo.
type Account struct {
	Email    string
	Password string
	Role     model.Role
	Name     string
}

var Accounts = []Account{
	{Email: "admin@exampro.com", Password: "admin123", Role: model.RoleAdministrator, Name: "System Administrator"},
	{Email: "director@exampro.com", Password: "director123", Role: model.RoleDirector, Name: "Academic Director"},
	{Email: "hassan@prof.com", Password: "teacher123", Role: model.RoleTeacher, Name: "Dr. Hassan Alami"},
	{Email: "fatima@prof.com", Password: "teacher123", Role: model.RoleTeacher, Name: "Prof. Fatima Zahra"},
	{Email: "mohamed@prof.com", Password: "teacher123", Role: model.RoleTeacher, Name: "Dr. Mohamed Tazi"},
}

const studentPassword = "student123"

type Result struct {
	Skipped  bool
	Users    int
	Students int
	Modules  int
	Grades   int
	Exams    int
}

type moduleSeed struct {
	name, code, filiere, teacher string
	coefficient                  float64
	semester                     int
}

type studentSeed struct {
	name, email, filiere string
}

var (
	filiereSeeds = []model.Filiere{
		{Name: "Informatique", Code: "INFO", Duration: 3},
		{Name: "Mathématiques", Code: "MATH", Duration: 3},
		{Name: "Physique", Code: "PHYS", Duration: 3},
	}
	moduleSeeds = []moduleSeed{
		{"Structures de Données", "INFO101", "INFO", "hassan@prof.com", 3, 1},
		{"Systèmes de Base de Données", "INFO201", "INFO", "hassan@prof.com", 4, 1},
		{"Développement Web", "INFO301", "INFO", "fatima@prof.com", 3, 2},
		{"Génie Logiciel", "INFO401", "INFO", "fatima@prof.com", 4, 2},
		{"Algèbre Linéaire", "MATH101", "MATH", "mohamed@prof.com", 4, 1},
	}
	studentSeeds = []studentSeed{
		{"Marie Dubois", "marie@etudiant.com", "INFO"},
		{"Pierre Martin", "pierre@etudiant.com", "INFO"},
		{"Sophie Laurent", "sophie@etudiant.com", "MATH"},
		{"Ahmed Benali", "ahmed@etudiant.com", "INFO"},
	}
	gradeSeeds = []struct {
		student, module string
		score           float64
	}{
		{"marie@etudiant.com", "INFO101", 17},
		{"marie@etudiant.com", "INFO201", 15.5},
		{"marie@etudiant.com", "INFO301", 18.5},
		{"marie@etudiant.com", "INFO401", 0},
		{"pierre@etudiant.com", "INFO101", 14},
		{"pierre@etudiant.com", "INFO201", 12.5},
		{"ahmed@etudiant.com", "INFO101", 16},
	}
	examSeeds = []struct {
		module, date, time, room string
		status                   model.ExamStatus
	}{
		{"INFO401", "2026-06-15", "09:00", "Salle A101", model.ExamUpcoming},
		{"MATH101", "2026-06-18", "14:00", "Salle B202", model.ExamUpcoming},
		{"INFO101", "2026-05-20", "10:00", "Salle C301", model.ExamFinished},
	}
)

// Demo fills an empty store. It does nothing when the demo administrator
// already exists.
func Demo(ctx context.Context, store repository.Repository, bcryptCost int) (Result, error) {
	_, err := store.GetUserByEmail(ctx, Accounts[0].Email)
	if err == nil {
		return Result{Skipped: true}, nil
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		return Result{}, err
	}

	var res Result
	filieres := make(map[string]int64, len(filiereSeeds))
	for _, f := range filiereSeeds {
		created, err := store.CreateFiliere(ctx, f)
		if err != nil {
			return res, fmt.Errorf("filiere %s: %w", f.Code, err)
		}
		filieres[f.Code] = created.ID
	}

	for _, account := range Accounts {
		hash, err := crypto.HashPasswordCost(account.Password, bcryptCost)
		if err != nil {
			return res, err
		}
		if _, err := store.CreateUser(ctx, model.User{
			Email: account.Email, Name: account.Name, Role: account.Role, PasswordHash: hash,
		}); err != nil {
			return res, fmt.Errorf("user %s: %w", account.Email, err)
		}
		res.Users++
	}

	teachers, err := store.ListTeachers(ctx)
	if err != nil {
		return res, err
	}
	teacherByEmail := make(map[string]int64, len(teachers))
	for _, t := range teachers {
		teacherByEmail[t.Email] = t.ID
	}

	modules := make(map[string]int64, len(moduleSeeds))
	for _, m := range moduleSeeds {
		module := model.Module{
			Name: m.name, Code: m.code, FiliereID: filieres[m.filiere],
			Coefficient: m.coefficient, Semester: m.semester,
		}
		if id, ok := teacherByEmail[m.teacher]; ok {
			module.TeacherID = &id
		}
		created, err := store.CreateModule(ctx, module)
		if err != nil {
			return res, fmt.Errorf("module %s: %w", m.code, err)
		}
		modules[m.code] = created.ID
		res.Modules++
	}

	hash, err := crypto.HashPasswordCost(studentPassword, bcryptCost)
	if err != nil {
		return res, err
	}
	students := make(map[string]int64, len(studentSeeds))
	for _, s := range studentSeeds {
		created, err := store.CreateStudent(ctx, repository.NewStudent{
			Name: s.name, Email: s.email, PasswordHash: hash, FiliereID: filieres[s.filiere],
		})
		if err != nil {
			return res, fmt.Errorf("student %s: %w", s.email, err)
		}
		students[s.email] = created.ID
		res.Students++
		res.Users++
	}

	for _, g := range gradeSeeds {
		if _, err := store.UpsertGrade(ctx, students[g.student], modules[g.module], g.score, grades.DeriveStatus(g.score)); err != nil {
			return res, fmt.Errorf("grade %s/%s: %w", g.student, g.module, err)
		}
		res.Grades++
	}

	for _, e := range examSeeds {
		date, err := time.Parse("2006-01-02", e.date)
		if err != nil {
			return res, err
		}
		if _, err := store.CreateExam(ctx, model.Exam{
			ModuleID: modules[e.module], ExamDate: date, ExamTime: e.time, Room: e.room,
			DurationMinutes: 120, Status: e.status,
		}); err != nil {
			return res, fmt.Errorf("exam %s: %w", e.module, err)
		}
		res.Exams++
	}
	return res, nil
}

// StudentPassword is the initial password of every demo student.
func StudentPassword() string {
	return studentPassword
}
