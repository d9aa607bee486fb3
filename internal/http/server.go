package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Khaeshi/cafe-api/internal/config"
	"github.com/Khaeshi/cafe-api/internal/model"
	"github.com/Khaeshi/cafe-api/internal/oauth"
	"github.com/Khaeshi/cafe-api/internal/repository"
)

// Store is everything the handlers need from the credential and menu store.
// *repository.Store satisfies it; tests use an in-memory fake.
type Store interface {
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	GetUserByID(ctx context.Context, userID string) (model.User, error)
	GetUserByGoogleID(ctx context.Context, googleID string) (model.User, error)
	CreateUser(ctx context.Context, user model.User) error
	UpdateUser(ctx context.Context, userID string, update repository.UserUpdate) (model.User, error)
	DeleteUser(ctx context.Context, userID string) (bool, error)
	ListUsers(ctx context.Context) ([]model.User, error)

	ListMenuItems(ctx context.Context) ([]model.MenuItem, error)
	GetMenuItem(ctx context.Context, itemID string) (model.MenuItem, error)
	CreateMenuItem(ctx context.Context, item model.MenuItem) error
	UpdateMenuItem(ctx context.Context, item model.MenuItem) (model.MenuItem, error)
	DeleteMenuItem(ctx context.Context, itemID string) (bool, error)
}

type Server struct {
	cfg    config.Config
	log    *slog.Logger
	store  Store
	google *oauth.Google
	states *oauth.StateStore
}

// NewServer wires the handlers. google and states may be nil, in which case
// the OAuth routes respond 503.
func NewServer(cfg config.Config, log *slog.Logger, store Store, google *oauth.Google, states *oauth.StateStore) *Server {
	return &Server{
		cfg:    cfg,
		log:    log,
		store:  store,
		google: google,
		states: states,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{s.cfg.ClientURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(s.requestLogger)

	r.Get("/", s.handleIndex)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)
		r.With(s.optionalAuth).Get("/me", s.handleGetMe)
		r.With(s.protect, s.admin).Get("/users", s.handleListUsers)

		r.Get("/google", s.handleGoogleRedirect)
		r.Get("/google/callback", s.handleGoogleCallback)
		r.With(s.protect).Get("/google/profile", s.handleGoogleProfile)
	})

	r.Route("/menu", func(r chi.Router) {
		r.Get("/", s.handleListMenu)
		r.With(s.protect, s.admin).Post("/", s.handleCreateMenuItem)
		r.With(s.protect, s.admin).Put("/{itemID}", s.handleUpdateMenuItem)
		r.With(s.protect, s.admin).Delete("/{itemID}", s.handleDeleteMenuItem)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Post("/auth/login", s.handleAdminLogin)
		r.With(s.protect, s.admin).Get("/auth/verify", s.handleAdminVerify)

		r.Route("/users", func(r chi.Router) {
			r.Use(s.protect, s.admin)
			r.Get("/", s.handleListUsers)
			r.Put("/{userID}", s.handleUpdateUserRole)
			r.Delete("/{userID}", s.handleDeleteUser)
		})
	})

	return r
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"message":     "Cafe API",
		"environment": s.cfg.Env,
		"endpoints": map[string]string{
			"register":    "POST /auth/register",
			"login":       "POST /auth/login",
			"logout":      "POST /auth/logout",
			"me":          "GET /auth/me",
			"googleOAuth": "GET /auth/google",
			"menu":        "GET /menu",
		},
	})
}

func decodeJSON(r *http.Request, out interface{}) error {
	decoder := json.NewDecoder(r.Body)
	return decoder.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"message": message,
	})
}

// serverError logs the cause and answers with a generic message so store
// and process failures never leak outside.
func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error, message string) {
	s.log.Error(message, "method", r.Method, "path", r.URL.Path, "err", err)
	writeError(w, http.StatusInternalServerError, message)
}
