package http

import (
	"log/slog"
	"net/http"

	"exampro/internal/api"
	"exampro/internal/apperr"
)

func (s *Server) handleListGrades(w http.ResponseWriter, r *http.Request) {
	list, err := s.ledger.List(r.Context(), claimsFromContext(r.Context()))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.Map(list, api.NewGrade))
}

func (s *Server) handleUpsertGrade(w http.ResponseWriter, r *http.Request) {
	var req api.UpsertGradeRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	claims := claimsFromContext(r.Context())
	grade, err := s.ledger.Upsert(r.Context(), claims, req.StudentID, req.ModuleID, *req.Score)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			writeError(w, http.StatusNotFound, "student_or_module_not_found")
			return
		}
		s.writeAppError(w, r, err)
		return
	}

	s.logger.Info("grade upserted",
		slog.Int64("student_id", grade.StudentID),
		slog.Int64("module_id", grade.ModuleID),
		slog.String("status", string(grade.Status)),
		slog.Int64("by", claims.UserID),
	)
	writeJSON(w, http.StatusOK, api.NewGrade(grade))
}
