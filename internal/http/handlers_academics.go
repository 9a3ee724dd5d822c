package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"exampro/internal/api"
	"exampro/internal/apperr"
	"exampro/internal/crypto"
	"exampro/internal/model"
	"exampro/internal/repository"
)

const (
	defaultCoefficient     = 1.0
	defaultSemester        = 1
	defaultExamDurationMin = 120
)

func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := s.store.ListStudents(r.Context())
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.Map(students, api.NewStudent))
}

func (s *Server) handleCreateStudent(w http.ResponseWriter, r *http.Request) {
	var req api.CreateStudentRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	password, err := initialPassword(s.cfg.DefaultStudentPassword)
	if err != nil {
		s.writeAppError(w, r, apperr.Internal(err))
		return
	}
	hash, err := crypto.HashPasswordCost(password, s.cfg.BcryptCost)
	if err != nil {
		s.writeAppError(w, r, apperr.Internal(err))
		return
	}

	student, err := s.store.CreateStudent(r.Context(), repository.NewStudent{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hash,
		FiliereID:    req.FiliereID,
	})
	if err != nil {
		switch {
		case apperr.Is(err, apperr.KindConflict):
			writeError(w, http.StatusConflict, "email_already_exists")
		case apperr.Is(err, apperr.KindNotFound):
			writeError(w, http.StatusNotFound, "filiere_not_found")
		default:
			s.writeAppError(w, r, err)
		}
		return
	}

	s.logger.Info("student created", slog.Int64("student_id", student.ID), slog.String("number", student.StudentNumber))
	writeJSON(w, http.StatusCreated, api.CreateStudentResponse{Student: api.NewStudent(student), DefaultPassword: password})
}

func (s *Server) handleListTeachers(w http.ResponseWriter, r *http.Request) {
	teachers, err := s.store.ListTeachers(r.Context())
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.Map(teachers, api.NewTeacher))
}

func (s *Server) handleListFilieres(w http.ResponseWriter, r *http.Request) {
	filieres, err := s.store.ListFilieres(r.Context())
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.Map(filieres, api.NewFiliere))
}

func (s *Server) handleCreateFiliere(w http.ResponseWriter, r *http.Request) {
	var req api.CreateFiliereRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	filiere, err := s.store.CreateFiliere(r.Context(), model.Filiere{
		Name:     strings.TrimSpace(req.Name),
		Code:     strings.ToUpper(strings.TrimSpace(req.Code)),
		Duration: req.Duration,
	})
	if err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			writeError(w, http.StatusConflict, "code_already_exists")
			return
		}
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, api.NewFiliere(filiere))
}

func (s *Server) handleListModules(w http.ResponseWriter, r *http.Request) {
	modules, err := s.store.ListModules(r.Context())
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.Map(modules, api.NewModule))
}

func (s *Server) handleCreateModule(w http.ResponseWriter, r *http.Request) {
	var req api.CreateModuleRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	module := model.Module{
		Name:        strings.TrimSpace(req.Name),
		Code:        strings.ToUpper(strings.TrimSpace(req.Code)),
		FiliereID:   req.FiliereID,
		TeacherID:   req.TeacherID,
		Coefficient: req.Coefficient,
		Semester:    req.Semester,
	}
	if module.Coefficient == 0 {
		module.Coefficient = defaultCoefficient
	}
	if module.Semester == 0 {
		module.Semester = defaultSemester
	}

	created, err := s.store.CreateModule(r.Context(), module)
	if err != nil {
		switch {
		case apperr.Is(err, apperr.KindConflict):
			writeError(w, http.StatusConflict, "code_already_exists")
		case apperr.Is(err, apperr.KindNotFound):
			writeError(w, http.StatusNotFound, "reference_not_found")
		default:
			s.writeAppError(w, r, err)
		}
		return
	}
	writeJSON(w, http.StatusCreated, api.NewModule(created))
}

func (s *Server) handleListExams(w http.ResponseWriter, r *http.Request) {
	exams, err := s.store.ListExams(r.Context())
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.Map(exams, api.NewExam))
}

func (s *Server) handleCreateExam(w http.ResponseWriter, r *http.Request) {
	var req api.CreateExamRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	date, err := time.Parse(api.DateLayout, req.ExamDate)
	if err != nil {
		s.writeAppError(w, r, apperr.ValidationField("examDate", "must be a date"))
		return
	}
	duration := req.DurationMinutes
	if duration == 0 {
		duration = defaultExamDurationMin
	}

	exam, err := s.store.CreateExam(r.Context(), model.Exam{
		ModuleID:        req.ModuleID,
		ExamDate:        date,
		ExamTime:        req.ExamTime,
		Room:            strings.TrimSpace(req.Room),
		DurationMinutes: duration,
		Status:          model.ExamUpcoming,
	})
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			writeError(w, http.StatusNotFound, "module_not_found")
			return
		}
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, api.NewExam(exam))
}
