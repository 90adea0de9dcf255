package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
	TransactionTypeRefund     TransactionType = "refund"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusExpired   TransactionStatus = "expired"
)

// IsTerminal reports whether no further status transition is allowed.
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusCompleted ||
		s == TransactionStatusFailed ||
		s == TransactionStatusExpired
}

// Transaction is one entry in the pending registry, keyed by the
// provider-assigned id. Amount, Currency, Network and UserID are immutable
// after creation. TokenAmount is written exactly once: at withdrawal
// initiation for withdrawals (the up-front debit), at settlement for
// deposits and refunds. It is never recomputed afterwards, so a conversion
// table change mid-flight cannot skew a refund.
type Transaction struct {
	ID          string            `json:"id"`
	Type        TransactionType   `json:"type"`
	Currency    string            `json:"currency"`
	Network     string            `json:"network"`
	Amount      decimal.Decimal   `json:"amount"`
	TokenAmount int64             `json:"token_amount"`
	Address     string            `json:"address"`
	UserID      int64             `json:"user_id"`
	Status      TransactionStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	ExpiresAt   time.Time         `json:"expires_at,omitempty"`
	RetryCount  int               `json:"retry_count"`
	LastError   string            `json:"last_error,omitempty"`
}
