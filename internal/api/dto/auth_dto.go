package dto

import "time"

// CredentialsRequest is the payload of register and login.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserSummary is the public view of an account.
type UserSummary struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// SessionResponse is returned by register and login.
type SessionResponse struct {
	UserID string       `json:"userId"`
	User   UserSummary  `json:"user"`
	Auth   AuthResponse `json:"auth"`
}

// MeResponse describes the bound identity.
type MeResponse struct {
	UserID      string   `json:"userId"`
	Email       string   `json:"email"`
	Authorities []string `json:"authorities"`
}
