package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"exampro/internal/api"
	"exampro/internal/apperr"
)

func (s *Server) handleListSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.store.ListSettings(r.Context())
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.Map(settings, api.NewSetting))
}

func (s *Server) handleUpdateSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	var req api.UpdateSettingRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	setting, err := s.store.UpdateSetting(r.Context(), key, req.Value)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			writeError(w, http.StatusNotFound, "setting_not_found")
			return
		}
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.NewSetting(setting))
}
