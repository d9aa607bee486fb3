package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Khaeshi/cafe-api/internal/crypto"
	"github.com/Khaeshi/cafe-api/internal/model"
	"github.com/Khaeshi/cafe-api/internal/repository"
)

// handleAdminLogin issues a short-lived bearer token for the back office.
// Unlike the storefront login it does not set a cookie.
func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
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
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		s.serverError(w, r, err, "Server error during login")
		return
	}

	if user.Role != model.RoleAdmin {
		writeError(w, http.StatusForbidden, "Access denied. Admin privileges required.")
		return
	}
	if !user.HasPassword() || crypto.CheckPassword(user.PasswordHash, req.Password) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := s.issueSessionToken(user, s.cfg.AdminTokenTTL)
	if err != nil {
		s.serverError(w, r, err, "Server error during login")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"token":   token,
		"user":    user.Public(),
	})
}

func (s *Server) handleAdminVerify(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    user.Public(),
	})
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

func (s *Server) handleUpdateUserRole(w http.ResponseWriter, r *http.Request) {
	actor := userFromContext(r.Context())
	userID := chi.URLParam(r, "userID")

	var req updateRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	role := strings.TrimSpace(strings.ToLower(req.Role))
	if role != model.RoleUser && role != model.RoleAdmin {
		writeError(w, http.StatusBadRequest, "Role must be user or admin")
		return
	}

	if actor.ID == userID && role != model.RoleAdmin {
		writeError(w, http.StatusForbidden, "Cannot change your own admin role")
		return
	}

	target, err := s.store.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		s.serverError(w, r, err, "Server error updating user")
		return
	}

	// Admin accounts must be able to log in locally even when Google-linked.
	if role == model.RoleAdmin && !target.HasPassword() {
		writeError(w, http.StatusBadRequest, "Admin accounts require a password")
		return
	}

	updated, err := s.store.UpdateUser(r.Context(), userID, repository.UserUpdate{Role: &role})
	if err != nil {
		s.serverError(w, r, err, "Server error updating user")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    updated.Public(),
	})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	actor := userFromContext(r.Context())
	userID := chi.URLParam(r, "userID")

	if actor.ID == userID {
		writeError(w, http.StatusForbidden, "Cannot delete your own account")
		return
	}

	target, err := s.store.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		s.serverError(w, r, err, "Server error deleting user")
		return
	}
	if target.Role == model.RoleAdmin {
		writeError(w, http.StatusForbidden, "Cannot delete admin accounts")
		return
	}

	deleted, err := s.store.DeleteUser(r.Context(), userID)
	if err != nil {
		s.serverError(w, r, err, "Server error deleting user")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "User deleted successfully",
	})
}
