package users

// CreateInput captures the admin "add user" form.
type CreateInput struct {
	Name       string `json:"name" validate:"required,min=2"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6"`
	AvatarURL  string `json:"avatarUrl" validate:"omitempty,url"`
	BloodGroup string `json:"bloodGroup" validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	DistrictID *int64 `json:"districtId"`
	Upazila    string `json:"upazila"`
	Role       string `json:"role" validate:"omitempty,oneof=admin volunteer donor"`
}

// ProfileInput captures an account's editable profile fields.
type ProfileInput struct {
	Name       string `json:"name" validate:"required,min=2"`
	AvatarURL  string `json:"avatarUrl" validate:"omitempty,url"`
	BloodGroup string `json:"bloodGroup" validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	DistrictID *int64 `json:"districtId"`
	Upazila    string `json:"upazila"`
}

// RoleInput carries a role change.
type RoleInput struct {
	Role string `json:"role" validate:"required,oneof=admin volunteer donor"`
}

// StatusInput carries an active/blocked change.
type StatusInput struct {
	Status string `json:"status" validate:"required,oneof=active blocked"`
}

// ListQuery selects one page of accounts.
type ListQuery struct {
	Status string
	Search string
	Page   int
	Limit  int
}
