package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/Khaeshi/cafe-api/internal/auth"
	"github.com/Khaeshi/cafe-api/internal/model"
	"github.com/Khaeshi/cafe-api/internal/repository"
)

const sessionCookieName = "token"

type userKey struct{}

func userFromContext(ctx context.Context) *model.User {
	value := ctx.Value(userKey{})
	user, _ := value.(*model.User)
	return user
}

// resolveToken looks in the session cookie first, then in the
// Authorization header.
func resolveToken(r *http.Request) string {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return bearerToken(r.Header.Get("Authorization"))
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// resolveUser verifies the request credential and loads the referenced user.
func (s *Server) resolveUser(r *http.Request) (*model.User, int, string) {
	token := resolveToken(r)
	if token == "" {
		return nil, http.StatusUnauthorized, "Not authorized to access this route"
	}

	claims, err := auth.ParseToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, http.StatusUnauthorized, "Token expired"
		}
		return nil, http.StatusUnauthorized, "Invalid token"
	}

	user, err := s.store.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, http.StatusUnauthorized, "User not found"
		}
		return nil, http.StatusInternalServerError, "Server error"
	}
	return &user, 0, ""
}

// protect requires a valid session token for an existing user.
func (s *Server) protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, status, message := s.resolveUser(r)
		if user == nil {
			writeError(w, status, message)
			return
		}
		ctx := context.WithValue(r.Context(), userKey{}, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// optionalAuth attaches the user when a valid token is present and
// continues anonymously otherwise. It never fails the request.
func (s *Server) optionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _, _ := s.resolveUser(r)
		if user != nil {
			r = r.WithContext(context.WithValue(r.Context(), userKey{}, user))
		}
		next.ServeHTTP(w, r)
	})
}

// admin requires protect to have run first.
func (s *Server) admin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := userFromContext(r.Context())
		if user == nil || user.Role != model.RoleAdmin {
			writeError(w, http.StatusForbidden, "Not authorized as admin")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.cfg.SessionTokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.Production(),
		SameSite: s.cookieSameSite(),
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.Production(),
		SameSite: s.cookieSameSite(),
	})
}

func (s *Server) cookieSameSite() http.SameSite {
	if s.cfg.Production() {
		return http.SameSiteStrictMode
	}
	return http.SameSiteLaxMode
}
