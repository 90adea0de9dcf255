package cryptopay

import "github.com/shopspring/decimal"

// ICryptopay is the HTTP client for the external payment provider. Every
// request is signed with the merchant API key.
type ICryptopay interface {
	CreatePayment(req *CreatePaymentRequest) (*PaymentInfo, error)
	CreateWithdrawal(req *CreateWithdrawalRequest) (*WithdrawalInfo, error)
	PaymentStatus(uuid, orderID string) (*PaymentInfo, error)
	PayoutStatus(uuid, orderID string) (*WithdrawalInfo, error)
	NetworkFee(currency, network string) (decimal.Decimal, error)
}
