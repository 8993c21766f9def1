package domain

import "time"

// User represents an authenticated user in the system.
// Users are created on first successful Google login, matched by email;
// the id is immutable afterwards.
type User struct {
	ID         int64     `json:"id"          db:"id"`
	Email      string    `json:"email"       db:"email"`
	FullName   string    `json:"full_name"   db:"full_name"`
	PictureURL string    `json:"picture_url" db:"picture_url"`
	CreatedAt  time.Time `json:"created_at"  db:"created_at"`
}

// TokenPair holds the OAuth2 tokens returned after code exchange.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// UserContext is the authenticated user context injected into request handlers.
type UserContext struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}
