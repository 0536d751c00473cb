package donations

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a donation request.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "inprogress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// transitions is the closed set of legal status edges. Completed and
// cancelled are terminal; nothing transitions back to pending.
var transitions = map[Status][]Status{
	StatusPending:    {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

// ParseStatus maps a raw string onto the closed status set.
func ParseStatus(raw string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusPending:
		return StatusPending, true
	case StatusInProgress:
		return StatusInProgress, true
	case StatusCompleted:
		return StatusCompleted, true
	case StatusCancelled:
		return StatusCancelled, true
	default:
		return "", false
	}
}

// AllowedTransitions returns the legal next statuses from s. The current
// status is never in the result, so the action set for S always excludes S.
func AllowedTransitions(s Status) []Status {
	next := transitions[s]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

// CanTransition reports whether from -> to is a legal edge.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Request is a recipient-need record donors can fulfill.
type Request struct {
	ID             string    `json:"id"`
	RequesterName  string    `json:"requesterName"`
	RequesterEmail string    `json:"requesterEmail"`
	RecipientName  string    `json:"recipientName"`
	BloodGroup     string    `json:"bloodGroup"`
	HospitalName   string    `json:"hospitalName"`
	FullAddress    string    `json:"fullAddress"`
	District       string    `json:"district"`
	Upazila        string    `json:"upazila"`
	DonationDate   string    `json:"donationDate"`
	DonationTime   string    `json:"donationTime"`
	RequestMessage string    `json:"requestMessage"`
	Status         Status    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Detail is a request plus the transition actions legal from its status.
type Detail struct {
	Request
	AllowedTransitions []Status `json:"allowedTransitions"`
}

// StatusCounts summarizes a requester's dashboard.
type StatusCounts struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"inprogress"`
	Completed  int `json:"completed"`
	Cancelled  int `json:"cancelled"`
}
