package model

import "github.com/shopspring/decimal"

// WebhookPayload is the provider callback body. The signature travels in a
// header, computed over the canonical (raw) body.
type WebhookPayload struct {
	Type     string          `json:"type"`
	Status   string          `json:"status"`
	UUID     string          `json:"uuid"`
	OrderID  string          `json:"order_id"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Network  string          `json:"network"`
	Address  string          `json:"address"`
}

// Provider-side webhook statuses this system reacts to.
const (
	WebhookTypePayment    = "payment"
	WebhookTypeWithdrawal = "withdrawal"
	WebhookTypeRefund     = "refund"

	WebhookStatusPaid      = "paid"
	WebhookStatusPending   = "pending"
	WebhookStatusExpired   = "expired"
	WebhookStatusFailed    = "failed"
	WebhookStatusCompleted = "completed"
)
