package http

import (
	"log/slog"
	"net/http"

	"exampro/internal/api"
	"exampro/internal/apperr"
	"exampro/internal/crypto"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if !s.decodeAndValidate(w, r, &req) {
		s.metrics.LoginAttempt("invalid_request")
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			s.metrics.LoginAttempt("invalid_credentials")
			writeError(w, http.StatusUnauthorized, "invalid_credentials")
			return
		}
		s.writeAppError(w, r, err)
		return
	}

	if !crypto.VerifyPassword(req.Password, user.PasswordHash) {
		s.metrics.LoginAttempt("invalid_credentials")
		writeError(w, http.StatusUnauthorized, "invalid_credentials")
		return
	}

	token, claims, err := s.tokens.Issue(user)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}

	s.metrics.LoginAttempt("success")
	s.logger.Info("login", slog.Int64("user_id", user.ID), slog.String("role", string(user.Role)))
	writeJSON(w, http.StatusOK, api.LoginResponse{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      api.NewUser(user),
	})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	var req api.ChangePasswordRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	user, err := s.store.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			writeError(w, http.StatusNotFound, "user_not_found")
			return
		}
		s.writeAppError(w, r, err)
		return
	}

	if !crypto.VerifyPassword(req.CurrentPassword, user.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "invalid_current_password")
		return
	}

	if err := s.setPassword(r, user.ID, req.NewPassword); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if err := s.denylist.Revoke(r.Context(), claims.ID, s.tokens.Remaining(claims)); err != nil {
		s.logger.Error("token revoke failed", slog.Any("error", err))
		writeError(w, http.StatusServiceUnavailable, "service_unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	user, err := s.store.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			writeError(w, http.StatusNotFound, "user_not_found")
			return
		}
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.NewUser(user))
}

func (s *Server) setPassword(r *http.Request, userID int64, password string) error {
	hash, err := crypto.HashPasswordCost(password, s.cfg.BcryptCost)
	if err != nil {
		return apperr.Internal(err)
	}
	return s.store.SetPassword(r.Context(), userID, hash)
}

// initialPassword returns the configured default or a fresh random one.
func initialPassword(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	return crypto.NewTemporaryPassword()
}
