package geo

// BloodGroups is the fixed set of supported ABO/Rh types.
var BloodGroups = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

// District is an administrative district.
type District struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Upazila is a sub-district within a district.
type Upazila struct {
	ID         int64  `json:"id"`
	DistrictID int64  `json:"districtId"`
	Name       string `json:"name"`
}

// Donor is the public search result for an active donor account.
type Donor struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	AvatarURL  string `json:"avatarUrl,omitempty"`
	BloodGroup string `json:"bloodGroup"`
	District   string `json:"district"`
	Upazila    string `json:"upazila"`
}

// DonorQuery narrows a donor search.
type DonorQuery struct {
	BloodGroup string
	DistrictID int64
	Upazila    string
}
