// Package api holds the JSON bodies exchanged between the HTTP server and
// its Go client.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"exampro/internal/model"
)

const DateLayout = "2006-01-02"

type User struct {
	ID        int64      `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      model.Role `json:"role"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=72"`
}

type AdminChangePasswordRequest struct {
	UserID      int64  `json:"userId" validate:"required,gt=0"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=72"`
}

type CreateUserRequest struct {
	Name  string     `json:"name" validate:"required,notblank,max=200"`
	Email string     `json:"email" validate:"required,email"`
	Role  model.Role `json:"role" validate:"required,oneof=administrator director teacher student"`
}

type CreateUserResponse struct {
	User            User   `json:"user"`
	DefaultPassword string `json:"defaultPassword"`
}

type Student struct {
	ID             int64  `json:"id"`
	UserID         int64  `json:"userId"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	FiliereID      int64  `json:"filiereId"`
	FiliereName    string `json:"filiereName"`
	StudentNumber  string `json:"studentNumber"`
	EnrollmentDate string `json:"enrollmentDate"`
}

type CreateStudentRequest struct {
	Name      string `json:"name" validate:"required,notblank,max=200"`
	Email     string `json:"email" validate:"required,email"`
	FiliereID int64  `json:"filiereId" validate:"required,gt=0"`
}

type CreateStudentResponse struct {
	Student         Student `json:"student"`
	DefaultPassword string  `json:"defaultPassword"`
}

type Teacher struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"userId"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Speciality string `json:"speciality"`
}

type Filiere struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Code     string `json:"code"`
	Duration int    `json:"duration"`
}

type CreateFiliereRequest struct {
	Name     string `json:"name" validate:"required,notblank,max=200"`
	Code     string `json:"code" validate:"required,notblank,max=32"`
	Duration int    `json:"duration" validate:"required,gt=0,lte=10"`
}

type Module struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Code        string  `json:"code"`
	FiliereID   int64   `json:"filiereId"`
	FiliereName string  `json:"filiereName"`
	TeacherID   *int64  `json:"teacherId"`
	TeacherName *string `json:"teacherName"`
	Coefficient float64 `json:"coefficient"`
	Semester    int     `json:"semester"`
}

type CreateModuleRequest struct {
	Name        string  `json:"name" validate:"required,notblank,max=200"`
	Code        string  `json:"code" validate:"required,notblank,max=32"`
	FiliereID   int64   `json:"filiereId" validate:"required,gt=0"`
	TeacherID   *int64  `json:"teacherId" validate:"omitempty,gt=0"`
	Coefficient float64 `json:"coefficient" validate:"gte=0"`
	Semester    int     `json:"semester" validate:"gte=0,lte=12"`
}

type Grade struct {
	ID          int64             `json:"id"`
	StudentID   int64             `json:"studentId"`
	ModuleID    int64             `json:"moduleId"`
	Score       float64           `json:"score"`
	Status      model.GradeStatus `json:"status"`
	ExamDate    string            `json:"examDate"`
	StudentName string            `json:"studentName"`
	ModuleName  string            `json:"moduleName"`
	ModuleCode  string            `json:"moduleCode"`
}

type UpsertGradeRequest struct {
	StudentID int64    `json:"studentId" validate:"required,gt=0"`
	ModuleID  int64    `json:"moduleId" validate:"required,gt=0"`
	Score     *float64 `json:"score" validate:"required,gte=0,lte=20"`
}

var errScoreAndGrade = errors.New("score and grade are mutually exclusive")

// UnmarshalJSON also accepts the value under "grade", the field name older
// clients send. Unknown fields are still rejected.
func (r *UpsertGradeRequest) UnmarshalJSON(data []byte) error {
	type fields UpsertGradeRequest
	var wire struct {
		fields
		Grade *float64 `json:"grade"`
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&wire); err != nil {
		return err
	}
	if wire.Score != nil && wire.Grade != nil {
		return errScoreAndGrade
	}
	*r = UpsertGradeRequest(wire.fields)
	if r.Score == nil {
		r.Score = wire.Grade
	}
	return nil
}

type Exam struct {
	ID              int64            `json:"id"`
	ModuleID        int64            `json:"moduleId"`
	ModuleName      string           `json:"moduleName"`
	ModuleCode      string           `json:"moduleCode"`
	FiliereName     string           `json:"filiereName"`
	ExamDate        string           `json:"examDate"`
	ExamTime        string           `json:"examTime"`
	Room            string           `json:"room"`
	DurationMinutes int              `json:"durationMinutes"`
	Status          model.ExamStatus `json:"status"`
}

type CreateExamRequest struct {
	ModuleID        int64  `json:"moduleId" validate:"required,gt=0"`
	ExamDate        string `json:"examDate" validate:"required,datetime=2006-01-02"`
	ExamTime        string `json:"examTime" validate:"required,datetime=15:04"`
	Room            string `json:"room" validate:"required,notblank,max=64"`
	DurationMinutes int    `json:"durationMinutes" validate:"gte=0,lte=600"`
}

type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type UpdateSettingRequest struct {
	Value string `json:"value" validate:"required,notblank,max=1000"`
}

type Health struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type Error struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}
