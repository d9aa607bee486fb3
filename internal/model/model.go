package model

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

// User is the full credential record as stored. PasswordHash and the Google
// token fields are secrets and must never be serialized; handlers work with
// the PublicUser projection instead.
type User struct {
	ID             string
	Name           string
	Email          string
	PasswordHash   string
	Role           string
	Phone          string
	AuthProvider   string
	GoogleID       string
	ProfilePicture string
	DisplayName    string

	GoogleAccessToken  string
	GoogleRefreshToken string
	TokenExpiry        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PublicUser is the redacted view returned by the API.
type PublicUser struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	Phone          string    `json:"phone,omitempty"`
	AuthProvider   string    `json:"authProvider"`
	ProfilePicture string    `json:"profilePicture,omitempty"`
	DisplayName    string    `json:"displayName,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Role:           u.Role,
		Phone:          u.Phone,
		AuthProvider:   u.AuthProvider,
		ProfilePicture: u.ProfilePicture,
		DisplayName:    u.DisplayName,
		CreatedAt:      u.CreatedAt,
	}
}

// HasPassword reports whether the account can log in locally. Pure-OAuth
// accounts have no hash.
func (u User) HasPassword() bool {
	return u.PasswordHash != ""
}

// TokenExpired reports whether the stored Google access token is expired or
// expires within the given leeway.
func (u User) TokenExpired(now time.Time, leeway time.Duration) bool {
	if u.TokenExpiry == nil {
		return true
	}
	return !now.Add(leeway).Before(*u.TokenExpiry)
}

type MenuItem struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Image       string    `json:"image"`
	Description string    `json:"description"`
	IsAvailable bool      `json:"isAvailable"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
