package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exampro/internal/api"
	"exampro/internal/model"
)

func int64Ptr(v int64) *int64 {
	return &v
}

func live[T any](items ...T) Category[T] {
	return Category[T]{Items: items, Source: Live}
}

func sampleDataset() Dataset {
	return Dataset{
		Filieres: live(
			api.Filiere{ID: 1, Name: "Informatique", Code: "INFO"},
			api.Filiere{ID: 2, Name: "Mathématiques", Code: "MATH"},
		),
		Students: live(
			api.Student{ID: 1, UserID: 10, Name: "Marie Dubois", FiliereID: 1},
			api.Student{ID: 2, UserID: 11, Name: "Pierre Martin", FiliereID: 1},
			api.Student{ID: 3, UserID: 12, Name: "Sophie Laurent", FiliereID: 2},
		),
		Teachers: live(
			api.Teacher{ID: 1, UserID: 20, Name: "Dr. Hassan Alami"},
			api.Teacher{ID: 2, UserID: 21, Name: "Prof. Fatima Zahra"},
		),
		Modules: live(
			api.Module{ID: 1, Code: "INFO101", FiliereID: 1, TeacherID: int64Ptr(1), Coefficient: 3},
			api.Module{ID: 2, Code: "INFO201", FiliereID: 1, TeacherID: int64Ptr(1), Coefficient: 4},
			api.Module{ID: 3, Code: "INFO301", FiliereID: 1, TeacherID: int64Ptr(2), Coefficient: 3},
			api.Module{ID: 4, Code: "INFO401", FiliereID: 1, TeacherID: int64Ptr(2), Coefficient: 4},
			api.Module{ID: 5, Code: "MATH101", FiliereID: 2, Coefficient: 4},
		),
		Grades: live(
			api.Grade{ID: 1, StudentID: 1, ModuleID: 1, Score: 17, Status: model.GradeAdmitted},
			api.Grade{ID: 2, StudentID: 1, ModuleID: 2, Score: 15.5, Status: model.GradeAdmitted},
			api.Grade{ID: 3, StudentID: 1, ModuleID: 3, Score: 18.5, Status: model.GradeAdmitted},
			api.Grade{ID: 4, StudentID: 2, ModuleID: 1, Score: 8, Status: model.GradeNotAdmitted},
			api.Grade{ID: 5, StudentID: 2, ModuleID: 2, Score: 0, Status: model.GradePending},
		),
		Exams: live(
			api.Exam{ID: 1, ModuleID: 4, ExamDate: "2026-06-18", Status: model.ExamUpcoming},
			api.Exam{ID: 2, ModuleID: 3, ExamDate: "2026-06-15", Status: model.ExamUpcoming},
			api.Exam{ID: 3, ModuleID: 1, ExamDate: "2026-05-20", Status: model.ExamFinished},
			api.Exam{ID: 4, ModuleID: 5, ExamDate: "2026-06-10", Status: model.ExamUpcoming},
		),
	}
}

func TestStudentDashboard(t *testing.T) {
	d, err := BuildDashboard(api.User{ID: 10, Role: model.RoleStudent}, sampleDataset())
	require.NoError(t, err)
	student, ok := d.(StudentDashboard)
	require.True(t, ok)
	assert.Equal(t, model.RoleStudent, d.Role())

	require.Len(t, student.Results, 4)
	assert.Equal(t, model.GradePending, student.Results[3].Status)
	assert.Equal(t, 3, student.Admitted)
	assert.Equal(t, 1, student.Pending)
	require.True(t, student.HasAverage)
	assert.InDelta(t, 17.0, student.Average, 1e-9)
	assert.InDelta(t, (17*3+15.5*4+18.5*3)/10.0, student.WeightedAverage, 1e-9)

	require.Len(t, student.UpcomingExams, 2)
	assert.Equal(t, int64(2), student.UpcomingExams[0].ID)
	require.Len(t, student.CompletedExams, 1)
	assert.Equal(t, int64(3), student.CompletedExams[0].ID)
}

func TestStudentDashboardWithoutGrades(t *testing.T) {
	d, err := BuildDashboard(api.User{ID: 12, Role: model.RoleStudent}, sampleDataset())
	require.NoError(t, err)
	student := d.(StudentDashboard)
	assert.False(t, student.HasAverage)
	assert.Equal(t, 1, student.Pending)
	assert.Len(t, student.UpcomingExams, 1)
}

func TestTeacherDashboard(t *testing.T) {
	d, err := BuildDashboard(api.User{ID: 20, Role: model.RoleTeacher}, sampleDataset())
	require.NoError(t, err)
	teacher := d.(TeacherDashboard)
	require.Len(t, teacher.Modules, 2)

	first := teacher.Modules[0]
	assert.Equal(t, "INFO101", first.Module.Code)
	assert.Equal(t, 2, first.Graded)
	assert.InDelta(t, 12.5, first.Average, 1e-9)

	second := teacher.Modules[1]
	assert.Equal(t, 1, second.Graded)
	assert.InDelta(t, 15.5, second.Average, 1e-9)
}

func TestDirectorDashboard(t *testing.T) {
	d, err := BuildDashboard(api.User{ID: 2, Role: model.RoleDirector}, sampleDataset())
	require.NoError(t, err)
	director := d.(DirectorDashboard)
	require.Len(t, director.Filieres, 2)
	assert.Equal(t, FiliereSummary{Filiere: sampleDataset().Filieres.Items[0], Students: 2, Modules: 4, UpcomingExams: 2}, director.Filieres[0])
	assert.Equal(t, 1, director.Filieres[1].UpcomingExams)
	assert.Equal(t, 4, director.Graded)
	assert.Equal(t, 3, director.Admitted)
	assert.InDelta(t, 0.75, director.AdmissionRate, 1e-9)
}

func TestAdminDashboard(t *testing.T) {
	d, err := BuildDashboard(api.User{ID: 1, Role: model.RoleAdministrator}, sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, AdminDashboard{Students: 3, Teachers: 2, Filieres: 2, Modules: 5, Exams: 4}, d)
}

func TestBuildDashboardErrors(t *testing.T) {
	_, err := BuildDashboard(api.User{ID: 1, Role: "janitor"}, sampleDataset())
	assert.Error(t, err)

	_, err = BuildDashboard(api.User{ID: 99, Role: model.RoleStudent}, sampleDataset())
	assert.ErrorIs(t, err, ErrProfileNotFound)

	_, err = BuildDashboard(api.User{ID: 99, Role: model.RoleTeacher}, Dataset{})
	assert.ErrorIs(t, err, ErrProfileNotFound)
}
