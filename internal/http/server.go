package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"exampro/internal/api"
	"exampro/internal/auth"
	"exampro/internal/config"
	"exampro/internal/grades"
	"exampro/internal/logging"
	"exampro/internal/metrics"
	"exampro/internal/repository"
)

type Server struct {
	cfg      config.Config
	store    repository.Repository
	tokens   *auth.TokenService
	denylist auth.Denylist
	ledger   *grades.Ledger
	metrics  *metrics.Metrics
	logger   *slog.Logger
	validate *requestValidator
	now      func() time.Time
}

// NewServer wires the API. A nil denylist keeps tokens stateless and nil
// metrics or logger fall back to private instances.
func NewServer(cfg config.Config, store repository.Repository, denylist auth.Denylist, m *metrics.Metrics, logger *slog.Logger) *Server {
	if denylist == nil {
		denylist = auth.NoopDenylist{}
	}
	if m == nil {
		m = metrics.New()
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Server{
		cfg:      cfg,
		store:    store,
		tokens:   auth.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTokenTTL),
		denylist: denylist,
		ledger:   grades.NewLedger(store, m),
		metrics:  m,
		logger:   logger,
		validate: newRequestValidator(),
		now:      time.Now,
	}
}

// Tokens exposes the token service, mainly so tests can mint tokens.
func (s *Server) Tokens() *auth.TokenService {
	return s.tokens
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.loggingMiddleware, s.metricsMiddleware, s.recoverMiddleware)

	r.Handle("/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Post("/auth/login", s.handleLogin)
		r.With(s.authMiddleware).Post("/auth/change-password", s.handleChangePassword)
		r.With(s.authMiddleware).Post("/auth/logout", s.handleLogout)
		r.With(s.authMiddleware).Get("/auth/me", s.handleGetMe)

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.authMiddleware, s.requireRoles(auth.AdminOnly))
			r.Get("/users", s.handleListUsers)
			r.Post("/users", s.handleCreateUser)
			r.Delete("/users/{id}", s.handleDeleteUser)
			r.Post("/change-user-password", s.handleAdminChangePassword)
		})

		r.With(s.authMiddleware).Get("/students", s.handleListStudents)
		r.With(s.authMiddleware, s.requireRoles(auth.Management)).Post("/students", s.handleCreateStudent)
		r.With(s.authMiddleware).Get("/teachers", s.handleListTeachers)

		r.With(s.authMiddleware).Get("/filieres", s.handleListFilieres)
		r.With(s.authMiddleware, s.requireRoles(auth.Management)).Post("/filieres", s.handleCreateFiliere)
		r.With(s.authMiddleware).Get("/modules", s.handleListModules)
		r.With(s.authMiddleware, s.requireRoles(auth.Management)).Post("/modules", s.handleCreateModule)
		r.With(s.authMiddleware).Get("/exams", s.handleListExams)
		r.With(s.authMiddleware, s.requireRoles(auth.Management)).Post("/exams", s.handleCreateExam)

		r.With(s.authMiddleware).Get("/grades", s.handleListGrades)
		r.With(s.authMiddleware, s.requireRoles(auth.Graders)).Post("/grades", s.handleUpsertGrade)

		r.With(s.authMiddleware).Get("/settings", s.handleListSettings)
		r.With(s.authMiddleware, s.requireRoles(auth.AdminOnly)).Put("/settings/{key}", s.handleUpdateSetting)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, api.Health{Status: "OK", Timestamp: s.now().UTC()})
}
