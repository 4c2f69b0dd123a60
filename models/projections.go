package models

import "time"

// Typed projections returned by the user repository. Column-level access
// control is modeled as distinct types rather than ad hoc field selection:
// a caller holding a PublicUser can never leak a credential because the
// credential was never loaded.

// PublicUser is the default read projection. No credential columns.
type PublicUser struct {
	ID           uint      `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	IsGoogleUser bool      `json:"is_google_user"`
	GoogleID     string    `json:"google_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Addresses []Address `json:"addresses,omitempty"`
}

// TokenUser adds the refresh token. Used by the auth service for
// existence checks and session-refresh validation, never served to
// end users.
type TokenUser struct {
	ID           uint   `json:"id"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	RefreshToken string `json:"refresh_token"`
	GoogleID     string `json:"google_id,omitempty"`
	Role         string `json:"role"`
	IsGoogleUser bool   `json:"is_google_user"`
}

// CredentialUser adds the password hash. Served only on the trusted peer
// surface for login verification.
type CredentialUser struct {
	ID           uint   `json:"id"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	RefreshToken string `json:"refresh_token"`
	Role         string `json:"role"`
	IsGoogleUser bool   `json:"is_google_user"`
}

// Public converts a fully loaded user to its public projection.
func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:           u.ID,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Role:         u.Role,
		IsActive:     u.IsActive,
		IsGoogleUser: u.IsGoogleUser,
		GoogleID:     u.GoogleID,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
		Addresses:    u.Addresses,
	}
}
