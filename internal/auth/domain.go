package auth

import (
	"time"

	"github.com/bloodlink/bloodlink/internal/shared"
)

// Account represents a registered user account.
type Account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	AvatarURL    string
	BloodGroup   string
	DistrictID   *int64
	Upazila      string
	Role         shared.Role
	Status       shared.AccountStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Credential is the outcome of a successful registration or login: the
// principal snapshot plus the bearer token the client attaches to every
// subsequent request.
type Credential struct {
	AccessToken string           `json:"accessToken"`
	ExpiresAt   time.Time        `json:"expiresAt"`
	User        CredentialedUser `json:"user"`
}

// CredentialedUser is the client-visible slice of an account.
type CredentialedUser struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	AvatarURL string      `json:"avatarUrl,omitempty"`
	Role      shared.Role `json:"role"`
}
