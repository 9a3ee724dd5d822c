package client

import (
	"errors"
	"fmt"
	"sort"

	"exampro/internal/api"
	"exampro/internal/grades"
	"exampro/internal/model"
)

var ErrProfileNotFound = errors.New("profile not found")

// Dashboard is the per-role summary built from a Dataset. The set of
// variants is closed.
type Dashboard interface {
	Role() model.Role
	dashboard()
}

type AdminDashboard struct {
	Students int
	Teachers int
	Filieres int
	Modules  int
	Exams    int
}

type FiliereSummary struct {
	Filiere       api.Filiere
	Students      int
	Modules       int
	UpcomingExams int
}

type DirectorDashboard struct {
	Filieres []FiliereSummary
	Graded   int
	Admitted int
	// AdmissionRate is Admitted/Graded, 0 when nothing is graded.
	AdmissionRate float64
}

type ModuleSummary struct {
	Module     api.Module
	Graded     int
	Average    float64
	HasAverage bool
}

type TeacherDashboard struct {
	Teacher api.Teacher
	Modules []ModuleSummary
}

type ModuleResult struct {
	Module api.Module
	Score  float64
	Status model.GradeStatus
}

type StudentDashboard struct {
	Student    api.Student
	Results    []ModuleResult
	Average    float64
	HasAverage bool
	// WeightedAverage weighs each module by its coefficient.
	WeightedAverage float64
	Admitted        int
	Pending         int
	UpcomingExams   []api.Exam
	CompletedExams  []api.Exam
}

func (AdminDashboard) Role() model.Role    { return model.RoleAdministrator }
func (DirectorDashboard) Role() model.Role { return model.RoleDirector }
func (TeacherDashboard) Role() model.Role  { return model.RoleTeacher }
func (StudentDashboard) Role() model.Role  { return model.RoleStudent }

func (AdminDashboard) dashboard()    {}
func (DirectorDashboard) dashboard() {}
func (TeacherDashboard) dashboard()  {}
func (StudentDashboard) dashboard()  {}

func BuildDashboard(user api.User, data Dataset) (Dashboard, error) {
	switch user.Role {
	case model.RoleAdministrator:
		return buildAdmin(data), nil
	case model.RoleDirector:
		return buildDirector(data), nil
	case model.RoleTeacher:
		return buildTeacher(user, data)
	case model.RoleStudent:
		return buildStudent(user, data)
	default:
		return nil, fmt.Errorf("unknown role %q", user.Role)
	}
}

func buildAdmin(data Dataset) AdminDashboard {
	return AdminDashboard{
		Students: len(data.Students.Items),
		Teachers: len(data.Teachers.Items),
		Filieres: len(data.Filieres.Items),
		Modules:  len(data.Modules.Items),
		Exams:    len(data.Exams.Items),
	}
}

func buildDirector(data Dataset) DirectorDashboard {
	summaries := make(map[int64]*FiliereSummary, len(data.Filieres.Items))
	out := DirectorDashboard{Filieres: make([]FiliereSummary, 0, len(data.Filieres.Items))}
	for _, filiere := range data.Filieres.Items {
		summaries[filiere.ID] = &FiliereSummary{Filiere: filiere}
	}
	for _, student := range data.Students.Items {
		if s, ok := summaries[student.FiliereID]; ok {
			s.Students++
		}
	}
	moduleFiliere := make(map[int64]int64, len(data.Modules.Items))
	for _, module := range data.Modules.Items {
		moduleFiliere[module.ID] = module.FiliereID
		if s, ok := summaries[module.FiliereID]; ok {
			s.Modules++
		}
	}
	for _, exam := range data.Exams.Items {
		if exam.Status != model.ExamUpcoming {
			continue
		}
		if s, ok := summaries[moduleFiliere[exam.ModuleID]]; ok {
			s.UpcomingExams++
		}
	}
	for _, filiere := range data.Filieres.Items {
		out.Filieres = append(out.Filieres, *summaries[filiere.ID])
	}

	counts := grades.Count(toModel(data.Grades.Items))
	out.Admitted = counts[model.GradeAdmitted]
	out.Graded = counts[model.GradeAdmitted] + counts[model.GradeNotAdmitted]
	if out.Graded > 0 {
		out.AdmissionRate = float64(out.Admitted) / float64(out.Graded)
	}
	return out
}

func buildTeacher(user api.User, data Dataset) (TeacherDashboard, error) {
	var teacher *api.Teacher
	for i := range data.Teachers.Items {
		if data.Teachers.Items[i].UserID == user.ID {
			teacher = &data.Teachers.Items[i]
			break
		}
	}
	if teacher == nil {
		return TeacherDashboard{}, ErrProfileNotFound
	}

	all := toModel(data.Grades.Items)
	out := TeacherDashboard{Teacher: *teacher, Modules: []ModuleSummary{}}
	for _, module := range data.Modules.Items {
		if module.TeacherID == nil || *module.TeacherID != teacher.ID {
			continue
		}
		summary := ModuleSummary{Module: module}
		summary.Average, summary.HasAverage = grades.ModuleAverage(all, module.ID)
		for _, grade := range all {
			if grade.ModuleID == module.ID && grade.Status != model.GradePending {
				summary.Graded++
			}
		}
		out.Modules = append(out.Modules, summary)
	}
	return out, nil
}

func buildStudent(user api.User, data Dataset) (StudentDashboard, error) {
	var student *api.Student
	for i := range data.Students.Items {
		if data.Students.Items[i].UserID == user.ID {
			student = &data.Students.Items[i]
			break
		}
	}
	if student == nil {
		return StudentDashboard{}, ErrProfileNotFound
	}

	own := make(map[int64]api.Grade)
	for _, grade := range data.Grades.Items {
		if grade.StudentID == student.ID {
			own[grade.ModuleID] = grade
		}
	}

	out := StudentDashboard{Student: *student, Results: []ModuleResult{}}
	inFiliere := make(map[int64]bool)
	coefficients := make(map[int64]float64)
	var graded []model.Grade
	for _, module := range data.Modules.Items {
		if module.FiliereID != student.FiliereID {
			continue
		}
		inFiliere[module.ID] = true
		coefficients[module.ID] = module.Coefficient
		result := ModuleResult{Module: module, Status: model.GradePending}
		if grade, ok := own[module.ID]; ok {
			result.Score = grade.Score
			result.Status = grade.Status
			graded = append(graded, grade.Model())
		}
		switch result.Status {
		case model.GradeAdmitted:
			out.Admitted++
		case model.GradePending:
			out.Pending++
		}
		out.Results = append(out.Results, result)
	}
	out.Average, out.HasAverage = grades.Average(graded)
	out.WeightedAverage, _ = grades.WeightedAverage(graded, coefficients)

	for _, exam := range data.Exams.Items {
		if !inFiliere[exam.ModuleID] {
			continue
		}
		if exam.Status == model.ExamFinished {
			out.CompletedExams = append(out.CompletedExams, exam)
		} else {
			out.UpcomingExams = append(out.UpcomingExams, exam)
		}
	}
	sort.SliceStable(out.UpcomingExams, func(i, j int) bool {
		return out.UpcomingExams[i].Date().Before(out.UpcomingExams[j].Date())
	})
	return out, nil
}

func toModel(list []api.Grade) []model.Grade {
	return api.Map(list, api.Grade.Model)
}
