package consts

const (
	// Header carrying the provider signature on inbound webhooks and
	// outbound API calls.
	SignatureHeader = "sign"
	MerchantHeader  = "merchant"
	RequestIDHeader = "x-request-id"

	// Kinds embedded in order_id ("<kind>_<userId>_<timestamp>").
	OrderKindDeposit    = "deposit"
	OrderKindWithdrawal = "withdrawal"
	OrderKindRefund     = "refund"
)
