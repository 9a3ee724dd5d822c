// Package client is the Go client of the ExamPro API: a persisted login
// session, a concurrent data loader and per-role dashboard summaries.
package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"exampro/internal/api"
)

// Session is what survives between runs: the signed-in user and their bearer token.
type Session struct {
	User  api.User `json:"user"`
	Token string   `json:"token"`
}

func (s Session) valid() bool {
	return s.Token != "" && s.User.ID > 0 && s.User.Role.Valid()
}

type SessionStore interface {
	Persist(session Session) error
	// Load reports false when no usable session is stored.
	Load() (Session, bool, error)
	Clear() error
}

// FileSessionStore keeps the session as a single JSON file.
type FileSessionStore struct {
	path string
}

func NewFileSessionStore(path string) *FileSessionStore {
	return &FileSessionStore{path: path}
}

// DefaultSessionPath is <user config dir>/exampro/session.json.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "exampro", "session.json"), nil
}

func (f *FileSessionStore) Path() string {
	return f.path
}

func (f *FileSessionStore) Persist(session Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func (f *FileSessionStore) Load() (Session, bool, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, fmt.Errorf("read session: %w", err)
	}
	var session Session
	if err := json.Unmarshal(data, &session); err != nil || !session.valid() {
		// corrupt content counts as logged out
		if err := f.Clear(); err != nil {
			return Session{}, false, err
		}
		return Session{}, false, nil
	}
	return session, true, nil
}

func (f *FileSessionStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
