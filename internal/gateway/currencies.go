package gateway

import (
	"github.com/shopspring/decimal"

	"github.com/pixelslots/crypto-backend/internal/errs"
)

// CurrencyConfig describes one supported provider currency: the fixed token
// conversion rate, deposit/withdrawal floors and the networks it settles on.
type CurrencyConfig struct {
	Code           string          `json:"code"`
	ConversionRate int64           `json:"conversion_rate"`
	MinDeposit     decimal.Decimal `json:"min_deposit"`
	MinWithdrawal  decimal.Decimal `json:"min_withdrawal"`
	Networks       []string        `json:"networks"`
}

var currencies = []CurrencyConfig{
	{
		Code:           "BTC",
		ConversionRate: 1_000_000,
		MinDeposit:     decimal.RequireFromString("0.0001"),
		MinWithdrawal:  decimal.RequireFromString("0.0005"),
		Networks:       []string{"bitcoin", "lightning"},
	},
	{
		Code:           "ETH",
		ConversionRate: 10_000,
		MinDeposit:     decimal.RequireFromString("0.005"),
		MinWithdrawal:  decimal.RequireFromString("0.01"),
		Networks:       []string{"ethereum", "arbitrum", "optimism"},
	},
	{
		Code:           "USDT",
		ConversionRate: 1,
		MinDeposit:     decimal.RequireFromString("1"),
		MinWithdrawal:  decimal.RequireFromString("10"),
		Networks:       []string{"ethereum", "tron", "bsc"},
	},
	{
		Code:           "USDC",
		ConversionRate: 1,
		MinDeposit:     decimal.RequireFromString("1"),
		MinWithdrawal:  decimal.RequireFromString("10"),
		Networks:       []string{"ethereum", "polygon", "solana"},
	},
	{
		Code:           "MATIC",
		ConversionRate: 1,
		MinDeposit:     decimal.RequireFromString("1"),
		MinWithdrawal:  decimal.RequireFromString("5"),
		Networks:       []string{"polygon", "ethereum"},
	},
}

// Withdrawal fee rates as a fraction of the withdrawn amount.
var (
	feeRateRegular = decimal.RequireFromString("0.01")
	feeRateVIP     = decimal.RequireFromString("0.005")
)

func currencyConfig(code string) (*CurrencyConfig, bool) {
	for i := range currencies {
		if currencies[i].Code == code {
			return &currencies[i], true
		}
	}
	return nil, false
}

func (c *CurrencyConfig) supportsNetwork(network string) bool {
	for _, n := range c.Networks {
		if n == network {
			return true
		}
	}
	return false
}

// validateCurrencyNetwork returns the currency config after checking the
// (currency, network) pair is supported.
func validateCurrencyNetwork(currency, network string) (*CurrencyConfig, error) {
	cfg, ok := currencyConfig(currency)
	if !ok {
		return nil, errs.NewValidation("unsupported currency %q", currency)
	}
	if !cfg.supportsNetwork(network) {
		return nil, errs.NewValidation("network %q is not available for %s", network, currency)
	}
	return cfg, nil
}

// WithdrawalFeeRate returns the fee fraction for the user's tier.
func WithdrawalFeeRate(vip bool) decimal.Decimal {
	if vip {
		return feeRateVIP
	}
	return feeRateRegular
}

// ConvertToTokens converts a native currency amount to integer token units,
// rounding down.
func ConvertToTokens(cfg *CurrencyConfig, amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(cfg.ConversionRate)).Floor().IntPart()
}

// Currencies returns a copy of the supported currency table.
func Currencies() []CurrencyConfig {
	out := make([]CurrencyConfig, len(currencies))
	copy(out, currencies)
	return out
}
