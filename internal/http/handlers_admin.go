package http

import (
	"log/slog"
	"net/http"
	"strings"

	"exampro/internal/api"
	"exampro/internal/apperr"
	"exampro/internal/crypto"
	"exampro/internal/model"
)

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.ListUsers(r.Context())
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.Map(users, api.NewUser))
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req api.CreateUserRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	password, err := initialPassword(s.cfg.DefaultUserPassword)
	if err != nil {
		s.writeAppError(w, r, apperr.Internal(err))
		return
	}
	hash, err := crypto.HashPasswordCost(password, s.cfg.BcryptCost)
	if err != nil {
		s.writeAppError(w, r, apperr.Internal(err))
		return
	}

	user, err := s.store.CreateUser(r.Context(), model.User{
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hash,
		Role:         req.Role,
		Name:         strings.TrimSpace(req.Name),
	})
	if err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			writeError(w, http.StatusConflict, "email_already_exists")
			return
		}
		s.writeAppError(w, r, err)
		return
	}

	s.logger.Info("user created", slog.Int64("user_id", user.ID), slog.String("role", string(user.Role)))
	writeJSON(w, http.StatusCreated, api.CreateUserResponse{User: api.NewUser(user), DefaultPassword: password})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_user_id")
		return
	}
	if claims := claimsFromContext(r.Context()); claims != nil && claims.UserID == id {
		writeError(w, http.StatusBadRequest, "cannot_delete_self")
		return
	}

	if err := s.store.DeleteUser(r.Context(), id); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			writeError(w, http.StatusNotFound, "user_not_found")
			return
		}
		s.writeAppError(w, r, err)
		return
	}
	s.logger.Info("user deleted", slog.Int64("user_id", id))
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleAdminChangePassword(w http.ResponseWriter, r *http.Request) {
	var req api.AdminChangePasswordRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	if err := s.setPassword(r, req.UserID, req.NewPassword); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			writeError(w, http.StatusNotFound, "user_not_found")
			return
		}
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
