package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"exampro/internal/api"
)

var ErrNotLoggedIn = errors.New("not logged in")

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status int
	Code   string
	Fields map[string]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Code)
}

// rejectsToken reports whether the server refused the bearer token itself,
// as opposed to a 401 about request content such as a wrong current password.
func (e *APIError) rejectsToken() bool {
	if e.Status != http.StatusUnauthorized {
		return false
	}
	switch e.Code {
	case "access_token_required", "invalid_token", "token_expired", "token_revoked":
		return true
	}
	return false
}

// IsStatus reports whether err is an APIError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// Client talks to the ExamPro HTTP API. It is logged in while it holds a session.
type Client struct {
	baseURL  string
	http     *http.Client
	sessions SessionStore

	mu      sync.RWMutex
	session *Session
}

func New(baseURL string, sessions SessionStore, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: 15 * time.Second},
		sessions: sessions,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Init restores a previously persisted session, if any.
func (c *Client) Init() error {
	session, ok, err := c.sessions.Load()
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if ok {
		c.session = &session
	} else {
		c.session = nil
	}
	return nil
}

func (c *Client) Session() (Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}

func (c *Client) LoggedIn() bool {
	_, ok := c.Session()
	return ok
}

func (c *Client) Login(ctx context.Context, email, password string) (api.User, error) {
	var resp api.LoginResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", api.LoginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return api.User{}, err
	}
	session := Session{User: resp.User, Token: resp.Token}
	if err := c.sessions.Persist(session); err != nil {
		return api.User{}, err
	}
	c.mu.Lock()
	c.session = &session
	c.mu.Unlock()
	return resp.User, nil
}

// Logout asks the server to revoke the token, then forgets the session locally
// whatever the server answered.
func (c *Client) Logout(ctx context.Context) error {
	if c.LoggedIn() {
		_ = c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	}
	return c.clearSession()
}

func (c *Client) Me(ctx context.Context) (api.User, error) {
	var user api.User
	err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &user)
	return user, err
}

func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/change-password",
		api.ChangePasswordRequest{CurrentPassword: current, NewPassword: next}, nil)
}

func (c *Client) Students(ctx context.Context) ([]api.Student, error) {
	return list[api.Student](ctx, c, "/api/students")
}

func (c *Client) Teachers(ctx context.Context) ([]api.Teacher, error) {
	return list[api.Teacher](ctx, c, "/api/teachers")
}

func (c *Client) Modules(ctx context.Context) ([]api.Module, error) {
	return list[api.Module](ctx, c, "/api/modules")
}

func (c *Client) Filieres(ctx context.Context) ([]api.Filiere, error) {
	return list[api.Filiere](ctx, c, "/api/filieres")
}

func (c *Client) Grades(ctx context.Context) ([]api.Grade, error) {
	return list[api.Grade](ctx, c, "/api/grades")
}

func (c *Client) Exams(ctx context.Context) ([]api.Exam, error) {
	return list[api.Exam](ctx, c, "/api/exams")
}

func (c *Client) UpsertGrade(ctx context.Context, req api.UpsertGradeRequest) (api.Grade, error) {
	var grade api.Grade
	err := c.do(ctx, http.MethodPost, "/api/grades", req, &grade)
	return grade, err
}

func list[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var out []T
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if session, ok := c.Session(); ok {
		req.Header.Set("Authorization", "Bearer "+session.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := errorFromResponse(resp)
		if apiErr.rejectsToken() && c.LoggedIn() {
			if err := c.clearSession(); err != nil {
				return err
			}
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) clearSession() error {
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
	return c.sessions.Clear()
}

func errorFromResponse(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode, Code: http.StatusText(resp.StatusCode)}
	var payload api.Error
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		apiErr.Code = payload.Error
		apiErr.Fields = payload.Fields
	}
	return apiErr
}
