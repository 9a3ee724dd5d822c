package model

import "time"

type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleDirector      Role = "director"
	RoleTeacher       Role = "teacher"
	RoleStudent       Role = "student"
)

// Roles lists every role in privilege order.
var Roles = []Role{RoleAdministrator, RoleDirector, RoleTeacher, RoleStudent}

func (r Role) Valid() bool {
	switch r {
	case RoleAdministrator, RoleDirector, RoleTeacher, RoleStudent:
		return true
	default:
		return false
	}
}

type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         Role
	Name         string
	CreatedAt    time.Time
}

type Student struct {
	ID             int64
	UserID         int64
	Name           string
	Email          string
	FiliereID      int64
	FiliereName    string
	StudentNumber  string
	EnrollmentDate time.Time
}

type Teacher struct {
	ID         int64
	UserID     int64
	Name       string
	Email      string
	Speciality string
}

type Filiere struct {
	ID       int64
	Name     string
	Code     string
	Duration int
}

type Module struct {
	ID          int64
	Name        string
	Code        string
	FiliereID   int64
	FiliereName string
	TeacherID   *int64
	TeacherName *string
	Coefficient float64
	Semester    int
}

type GradeStatus string

const (
	GradeAdmitted    GradeStatus = "admis"
	GradeNotAdmitted GradeStatus = "non-admis"
	GradePending     GradeStatus = "en-attente"
)

type Grade struct {
	ID          int64
	StudentID   int64
	ModuleID    int64
	Score       float64
	Status      GradeStatus
	ExamDate    time.Time
	StudentName string
	ModuleName  string
	ModuleCode  string
}

type ExamStatus string

const (
	ExamUpcoming ExamStatus = "a-venir"
	ExamFinished ExamStatus = "termine"
)

type Exam struct {
	ID              int64
	ModuleID        int64
	ModuleName      string
	ModuleCode      string
	FiliereName     string
	ExamDate        time.Time
	ExamTime        string
	Room            string
	DurationMinutes int
	Status          ExamStatus
}

type Setting struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}
