// Package oauth implements the Google sign-in flow: consent redirect,
// code exchange, profile fetch, reconciliation against the credential
// store, and stored access-token refresh.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const userinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// DefaultPrompt forces the account chooser and re-consent so a refresh
// token is issued on first sign-in.
const DefaultPrompt = "select_account consent"

var ErrMissingEmail = errors.New("google profile has no email")

type Google struct {
	conf *oauth2.Config
}

func NewGoogle(clientID, clientSecret, callbackURL string) *Google {
	return &Google{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			RedirectURL:  callbackURL,
			Scopes:       []string{"profile", "email"},
		},
	}
}

// Profile is the subset of the Google userinfo response the flow needs.
type Profile struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (g *Google) AuthURL(state, prompt string) string {
	if prompt == "" {
		prompt = DefaultPrompt
	}
	return g.conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", prompt),
	)
}

func (g *Google) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return g.conf.Exchange(ctx, code)
}

func (g *Google) FetchProfile(ctx context.Context, token *oauth2.Token) (Profile, error) {
	client := g.conf.Client(ctx, token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, userinfoURL, nil)
	if err != nil {
		return Profile{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return Profile{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Profile{}, fmt.Errorf("userinfo request failed: %s", resp.Status)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return Profile{}, err
	}
	if profile.Email == "" {
		return Profile{}, ErrMissingEmail
	}
	return profile, nil
}
