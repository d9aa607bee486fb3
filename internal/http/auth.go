package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Khaeshi/cafe-api/internal/auth"
	"github.com/Khaeshi/cafe-api/internal/crypto"
	"github.com/Khaeshi/cafe-api/internal/model"
	"github.com/Khaeshi/cafe-api/internal/repository"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Name, email, and password are required")
		return
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		s.serverError(w, r, err, "Server error during registration")
		return
	}

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         model.RoleUser,
		Phone:        strings.TrimSpace(req.Phone),
		AuthProvider: model.ProviderLocal,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			writeError(w, http.StatusConflict, "User already exists with this email")
			return
		}
		s.serverError(w, r, err, "Server error during registration")
		return
	}

	token, err := s.issueSessionToken(user, s.cfg.SessionTokenTTL)
	if err != nil {
		s.serverError(w, r, err, "Server error during registration")
		return
	}
	s.setSessionCookie(w, token)

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "User registered successfully",
		"user":    user.Public(),
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Same message as a wrong password so accounts cannot be
			// enumerated.
			writeError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		s.serverError(w, r, err, "Server error during login")
		return
	}

	// Pure-OAuth accounts have no hash; the response stays uniform.
	if !user.HasPassword() || crypto.CheckPassword(user.PasswordHash, req.Password) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := s.issueSessionToken(user, s.cfg.SessionTokenTTL)
	if err != nil {
		s.serverError(w, r, err, "Server error during login")
		return
	}
	s.setSessionCookie(w, token)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Login successful",
		"user":    user.Public(),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	s.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Logged out successfully",
	})
}

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	if user == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"user":    nil,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    user.Public(),
	})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.ListUsers(r.Context())
	if err != nil {
		s.serverError(w, r, err, "Server error fetching users")
		return
	}

	views := make([]model.PublicUser, 0, len(users))
	for _, user := range users {
		views = append(views, user.Public())
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   len(views),
		"users":   views,
	})
}

func (s *Server) issueSessionToken(user model.User, ttl time.Duration) (string, error) {
	return auth.NewSessionToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, ttl, auth.Claims{
		UserID: user.ID,
		Role:   user.Role,
		Email:  user.Email,
	})
}
