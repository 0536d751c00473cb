package donations

// RequestInput is the editable field set shared by create and edit. The
// requester identity is taken from the principal, never from the body.
type RequestInput struct {
	RecipientName  string `json:"recipientName" validate:"required,max=120"`
	BloodGroup     string `json:"bloodGroup" validate:"required,max=3"`
	HospitalName   string `json:"hospitalName" validate:"required,max=200"`
	FullAddress    string `json:"fullAddress" validate:"required,max=300"`
	District       string `json:"district" validate:"required,max=120"`
	Upazila        string `json:"upazila" validate:"required,max=120"`
	DonationDate   string `json:"donationDate" validate:"required,datetime=2006-01-02"`
	DonationTime   string `json:"donationTime" validate:"required,datetime=15:04"`
	RequestMessage string `json:"requestMessage" validate:"required,min=20,max=2000"`
}

// TransitionInput carries the target status for a transition.
type TransitionInput struct {
	Status string `json:"status" validate:"required"`
}

// ListQuery shapes a paginated, filtered list fetch. Scope restricts the
// result set: empty for the public/admin view, a requester email for the
// "my requests" view.
type ListQuery struct {
	RequesterEmail string
	Status         *Status
	Search         string
	Page           int
	Limit          int
}

// DashboardSummary is the donor dashboard payload.
type DashboardSummary struct {
	Counts StatusCounts `json:"counts"`
	Recent []Request    `json:"recent"`
}
