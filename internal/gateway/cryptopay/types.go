package cryptopay

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

type CreatePaymentRequest struct {
	Amount   string `json:"amount,omitempty"`
	Currency string `json:"currency"`
	Network  string `json:"network,omitempty"`
	OrderID  string `json:"order_id"`
	Lifetime int    `json:"lifetime,omitempty"`
}

type PaymentInfo struct {
	UUID      string          `json:"uuid"`
	OrderID   string          `json:"order_id"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Network   string          `json:"network"`
	Address   string          `json:"address"`
	Status    string          `json:"status"`
	ExpiredAt int64           `json:"expired_at"`
}

type CreateWithdrawalRequest struct {
	Amount     string `json:"amount"`
	Currency   string `json:"currency"`
	Network    string `json:"network"`
	OrderID    string `json:"order_id"`
	Address    string `json:"address"`
	IsSubtract bool   `json:"is_subtract"`
}

type WithdrawalInfo struct {
	UUID    string          `json:"uuid"`
	OrderID string          `json:"order_id"`
	Amount  decimal.Decimal `json:"amount"`
	Status  string          `json:"status"`
	TxHash  string          `json:"txid"`
}

type statusRequest struct {
	UUID    string `json:"uuid,omitempty"`
	OrderID string `json:"order_id,omitempty"`
}

type feeRequest struct {
	Currency string `json:"currency"`
	Network  string `json:"network"`
}

type feeResult struct {
	Commission decimal.Decimal `json:"commission"`
}

// apiResponse is the provider's envelope. State zero means success, anything
// else carries a message.
type apiResponse struct {
	State   int             `json:"state"`
	Result  json.RawMessage `json:"result"`
	Message string          `json:"message"`
}
