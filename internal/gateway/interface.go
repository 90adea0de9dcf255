package gateway

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pixelslots/crypto-backend/internal/model"
)

// DepositAddress is the result of issuing a deposit address: where to pay,
// until when, and the smallest accepted amount.
type DepositAddress struct {
	Address        string          `json:"address"`
	ExpiresAt      time.Time       `json:"expires_at"`
	MinimumDeposit decimal.Decimal `json:"minimum_deposit"`
}

// ProviderStatus is the provider-side view of one transaction, as returned
// by a read-only status query.
type ProviderStatus struct {
	TxID   string          `json:"tx_id"`
	Status string          `json:"status"`
	Amount decimal.Decimal `json:"amount"`
	TxHash string          `json:"tx_hash,omitempty"`
}

// IGateway issues deposit addresses and withdrawal requests against the
// external provider. Withdrawals debit the ledger up front, so a failed
// provider submission triggers a compensating refund before the error
// surfaces.
type IGateway interface {
	GenerateDepositAddress(userID int64, currency, network string) (*DepositAddress, error)
	InitiateWithdrawal(userID int64, amount decimal.Decimal, currency, network string) (*model.Transaction, error)
	SetWithdrawalAddress(userID int64, currency, network, address string) error
	CheckStatus(txID string) (*ProviderStatus, error)
	NetworkFees(network string) (map[string]decimal.Decimal, error)
	PendingForUser(userID int64) []*model.Transaction
	TokenAmount(currency string, amount decimal.Decimal) (int64, error)
}
