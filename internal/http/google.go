package http

import (
	"errors"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"

	"github.com/Khaeshi/cafe-api/internal/oauth"
)

func (s *Server) handleGoogleRedirect(w http.ResponseWriter, r *http.Request) {
	if s.google == nil || s.states == nil {
		writeError(w, http.StatusServiceUnavailable, "Google sign-in is not configured")
		return
	}

	state, err := s.states.Issue(r.Context())
	if err != nil {
		s.serverError(w, r, err, "Server error starting Google sign-in")
		return
	}

	prompt := r.URL.Query().Get("prompt")
	http.Redirect(w, r, s.google.AuthURL(state, prompt), http.StatusFound)
}

func (s *Server) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if s.google == nil || s.states == nil {
		writeError(w, http.StatusServiceUnavailable, "Google sign-in is not configured")
		return
	}

	query := r.URL.Query()
	if query.Get("error") != "" {
		s.failOAuth(w, r, "oauth_failed")
		return
	}

	ok, err := s.states.Consume(r.Context(), query.Get("state"))
	if err != nil {
		s.log.Error("oauth state lookup failed", "err", err)
		s.failOAuth(w, r, "server_error")
		return
	}
	if !ok {
		s.failOAuth(w, r, "invalid_state")
		return
	}

	code := query.Get("code")
	if code == "" {
		s.failOAuth(w, r, "oauth_failed")
		return
	}

	token, err := s.google.Exchange(r.Context(), code)
	if err != nil {
		s.log.Error("oauth code exchange failed", "err", err)
		s.failOAuth(w, r, "oauth_failed")
		return
	}

	profile, err := s.google.FetchProfile(r.Context(), token)
	if err != nil {
		s.log.Error("oauth profile fetch failed", "err", err)
		if errors.Is(err, oauth.ErrMissingEmail) {
			s.failOAuth(w, r, "no_email")
			return
		}
		s.failOAuth(w, r, "oauth_failed")
		return
	}

	user, err := oauth.Reconcile(r.Context(), s.store, profile, token)
	if err != nil {
		s.log.Error("oauth reconciliation failed", "err", err)
		s.failOAuth(w, r, "server_error")
		return
	}

	sessionToken, err := s.issueSessionToken(user, s.cfg.SessionTokenTTL)
	if err != nil {
		s.log.Error("session token issue failed", "err", err)
		s.failOAuth(w, r, "server_error")
		return
	}
	s.setSessionCookie(w, sessionToken)

	http.Redirect(w, r, s.cfg.ClientURL+"/success", http.StatusFound)
}

// failOAuth redirects back to the client with an error code and no session.
func (s *Server) failOAuth(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, s.cfg.ClientURL+"/?error="+url.QueryEscape(code), http.StatusFound)
}

// handleGoogleProfile returns the live Google userinfo profile for the
// authenticated user, refreshing the stored access token when needed.
func (s *Server) handleGoogleProfile(w http.ResponseWriter, r *http.Request) {
	if s.google == nil {
		writeError(w, http.StatusServiceUnavailable, "Google sign-in is not configured")
		return
	}

	user := userFromContext(r.Context())
	if user.GoogleID == "" {
		writeError(w, http.StatusBadRequest, "User not authenticated with Google")
		return
	}

	accessToken, err := s.google.ValidAccessToken(r.Context(), s.store, *user)
	if err != nil {
		if errors.Is(err, oauth.ErrRefreshFailed) {
			writeError(w, http.StatusBadGateway, "Failed to refresh Google access token")
			return
		}
		s.serverError(w, r, err, "Server error fetching Google profile")
		return
	}

	profile, err := s.google.FetchProfile(r.Context(), &oauth2.Token{AccessToken: accessToken})
	if err != nil {
		s.log.Error("google profile fetch failed", "err", err)
		writeError(w, http.StatusBadGateway, "Failed to fetch Google profile")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"profile": profile,
	})
}
