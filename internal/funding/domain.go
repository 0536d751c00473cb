package funding

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Status tracks a checkout session through its life.
type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusExpired Status = "expired"
)

// Funding is one contribution made through the checkout flow.
type Funding struct {
	ID            string    `json:"id"`
	DonorName     string    `json:"donorName"`
	DonorEmail    string    `json:"donorEmail"`
	Amount        int64     `json:"amount"`
	DisplayAmount string    `json:"displayAmount"`
	SessionID     string    `json:"sessionId"`
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Summary aggregates the paid contributions.
type Summary struct {
	TotalRaised        int64  `json:"totalRaised"`
	DisplayTotalRaised string `json:"displayTotalRaised"`
	Contributions      int    `json:"contributions"`
}

var amountPrinter = message.NewPrinter(language.English)

// FormatAmount renders a whole-unit USD amount with digit grouping.
func FormatAmount(amount int64) string {
	return amountPrinter.Sprintf("$%v", number.Decimal(amount))
}
