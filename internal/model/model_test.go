package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestPublicRedactsCredentials(t *testing.T) {
	expiry := time.Now().Add(time.Hour)
	user := User{
		ID:                 "id-1",
		Name:               "A",
		Email:              "a@x.com",
		PasswordHash:       "$2a$12$secret",
		Role:               RoleUser,
		GoogleID:           "google-1",
		GoogleAccessToken:  "ya29.access",
		GoogleRefreshToken: "1//refresh",
		TokenExpiry:        &expiry,
	}

	raw, err := json.Marshal(user.Public())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, secret := range []string{"$2a$12$secret", "ya29.access", "1//refresh", "google-1"} {
		if strings.Contains(string(raw), secret) {
			t.Fatalf("public view leaks %q: %s", secret, raw)
		}
	}
	if !strings.Contains(string(raw), `"email":"a@x.com"`) {
		t.Fatalf("public view missing email: %s", raw)
	}
}

func TestHasPassword(t *testing.T) {
	if (User{}).HasPassword() {
		t.Fatal("empty hash must not count as a password")
	}
	if !(User{PasswordHash: "$2a$12$x"}).HasPassword() {
		t.Fatal("expected HasPassword true")
	}
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()
	leeway := 5 * time.Minute

	if !(User{}).TokenExpired(now, leeway) {
		t.Fatal("missing expiry must count as expired")
	}

	past := now.Add(-time.Minute)
	if !(User{TokenExpiry: &past}).TokenExpired(now, leeway) {
		t.Fatal("past expiry must count as expired")
	}

	// Inside the leeway window the token is treated as expired early.
	soon := now.Add(2 * time.Minute)
	if !(User{TokenExpiry: &soon}).TokenExpired(now, leeway) {
		t.Fatal("expiry within leeway must count as expired")
	}

	later := now.Add(time.Hour)
	if (User{TokenExpiry: &later}).TokenExpired(now, leeway) {
		t.Fatal("fresh token must not count as expired")
	}
}
