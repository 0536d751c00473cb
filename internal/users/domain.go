package users

import (
	"time"

	"github.com/bloodlink/bloodlink/internal/shared"
)

// User is the admin-facing projection of an account. The password hash
// never leaves the repository layer.
type User struct {
	ID         string               `json:"id"`
	Name       string               `json:"name"`
	Email      string               `json:"email"`
	AvatarURL  string               `json:"avatarUrl,omitempty"`
	BloodGroup string               `json:"bloodGroup,omitempty"`
	DistrictID *int64               `json:"districtId,omitempty"`
	Upazila    string               `json:"upazila,omitempty"`
	Role       shared.Role          `json:"role"`
	Status     shared.AccountStatus `json:"status"`
	CreatedAt  time.Time            `json:"createdAt"`
	UpdatedAt  time.Time            `json:"updatedAt"`
}

// RoleLookup is the answer to "what may this email do right now".
type RoleLookup struct {
	Role   shared.Role          `json:"role"`
	Status shared.AccountStatus `json:"status"`
}
