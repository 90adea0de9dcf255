package processor

import "github.com/shopspring/decimal"

// IProcessor validates and settles provider callbacks. Handle is the full
// webhook pipeline, SettleFromStatus is the same settlement path driven by a
// monitor status poll instead of a delivery.
type IProcessor interface {
	Handle(body []byte, signature string, sourceIP string) error
	SettleFromStatus(txID string, providerStatus string, amount decimal.Decimal) error
}
