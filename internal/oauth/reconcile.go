package oauth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/Khaeshi/cafe-api/internal/model"
	"github.com/Khaeshi/cafe-api/internal/repository"
)

// UserStore is the slice of the credential store the flow needs.
type UserStore interface {
	GetUserByGoogleID(ctx context.Context, googleID string) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	CreateUser(ctx context.Context, user model.User) error
	UpdateUser(ctx context.Context, userID string, update repository.UserUpdate) (model.User, error)
}

// Reconcile maps a Google profile to exactly one user record. Ordered,
// first match wins: by google id, then by email (linking a local account),
// else a new user is created. A duplicate-key failure on the create means a
// concurrent callback won the insert, so it is retried as a lookup.
func Reconcile(ctx context.Context, store UserStore, profile Profile, token *oauth2.Token) (model.User, error) {
	email := strings.TrimSpace(strings.ToLower(profile.Email))
	if email == "" {
		return model.User{}, ErrMissingEmail
	}
	expiry := tokenExpiry(token)

	user, err := reconcileExisting(ctx, store, profile, email, token, expiry)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return model.User{}, err
	}

	now := time.Now().UTC()
	created := model.User{
		ID:                 uuid.NewString(),
		Name:               profile.Name,
		Email:              email,
		Role:               model.RoleUser,
		AuthProvider:       model.ProviderGoogle,
		GoogleID:           profile.ID,
		ProfilePicture:     profile.Picture,
		DisplayName:        profile.Name,
		GoogleAccessToken:  token.AccessToken,
		GoogleRefreshToken: token.RefreshToken,
		TokenExpiry:        &expiry,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	err = store.CreateUser(ctx, created)
	if err == nil {
		return created, nil
	}
	if errors.Is(err, repository.ErrDuplicate) {
		// Lost the race against a concurrent callback; the row exists now.
		return reconcileExisting(ctx, store, profile, email, token, expiry)
	}
	return model.User{}, err
}

func reconcileExisting(ctx context.Context, store UserStore, profile Profile, email string, token *oauth2.Token, expiry time.Time) (model.User, error) {
	update := repository.UserUpdate{
		GoogleAccessToken: &token.AccessToken,
		ProfilePicture:    &profile.Picture,
		TokenExpiry:       &expiry,
	}
	// Google only returns a refresh token on first consent; keep the stored
	// one when none is issued.
	if token.RefreshToken != "" {
		update.GoogleRefreshToken = &token.RefreshToken
	}

	user, err := store.GetUserByGoogleID(ctx, profile.ID)
	if err == nil {
		return store.UpdateUser(ctx, user.ID, update)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return model.User{}, err
	}

	user, err = store.GetUserByEmail(ctx, email)
	if err != nil {
		return model.User{}, err
	}
	// Link the Google identity to the existing local account. Password and
	// role are preserved.
	googleID := profile.ID
	provider := model.ProviderGoogle
	update.GoogleID = &googleID
	update.AuthProvider = &provider
	return store.UpdateUser(ctx, user.ID, update)
}

func tokenExpiry(token *oauth2.Token) time.Time {
	if !token.Expiry.IsZero() {
		return token.Expiry.UTC()
	}
	// Google access tokens last about an hour when no expiry is reported.
	return time.Now().UTC().Add(time.Hour)
}

const refreshLeeway = 5 * time.Minute

var ErrRefreshFailed = errors.New("google token refresh failed")

// ValidAccessToken returns a usable access token for the user, refreshing
// and persisting it when the stored one is expired or about to expire. A
// failed refresh leaves the stored state untouched.
func (g *Google) ValidAccessToken(ctx context.Context, store UserStore, user model.User) (string, error) {
	if user.GoogleAccessToken == "" && user.GoogleRefreshToken == "" {
		return "", fmt.Errorf("%w: account has no google tokens", ErrRefreshFailed)
	}
	if !user.TokenExpired(time.Now().UTC(), refreshLeeway) {
		return user.GoogleAccessToken, nil
	}
	if user.GoogleRefreshToken == "" {
		return "", fmt.Errorf("%w: no refresh token stored", ErrRefreshFailed)
	}

	source := g.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: user.GoogleRefreshToken})
	token, err := source.Token()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}

	expiry := tokenExpiry(token)
	update := repository.UserUpdate{
		GoogleAccessToken: &token.AccessToken,
		TokenExpiry:       &expiry,
	}
	if token.RefreshToken != "" && token.RefreshToken != user.GoogleRefreshToken {
		update.GoogleRefreshToken = &token.RefreshToken
	}
	if _, err := store.UpdateUser(ctx, user.ID, update); err != nil {
		return "", err
	}
	return token.AccessToken, nil
}
