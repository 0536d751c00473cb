package funding

// CheckoutInput starts a checkout session.
type CheckoutInput struct {
	Amount int64 `json:"amount" validate:"required,min=1"`
}

// CheckoutResponse hands the client the hosted payment page.
type CheckoutResponse struct {
	SessionID   string `json:"sessionId"`
	CheckoutURL string `json:"checkoutUrl"`
}

// ConfirmInput reconciles a finished checkout session.
type ConfirmInput struct {
	SessionID string `json:"sessionId" validate:"required"`
}

// ListQuery selects one page of contributions.
type ListQuery struct {
	SessionID string
	Page      int
	Limit     int
}
