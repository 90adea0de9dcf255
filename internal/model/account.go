package model

import "time"

// Account owns a user's playable token balance. The balance only changes
// through the ledger, paired with a ProcessedTransaction marker when the
// mutation is keyed by a provider transaction id.
type Account struct {
	UserID       int64     `json:"user_id" gorm:"column:user_id;primaryKey"`
	TokenBalance int64     `json:"token_balance" gorm:"column:token_balance;not null;default:0"`
	VIP          bool      `json:"vip" gorm:"column:vip;not null;default:false"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Account) TableName() string {
	return "accounts"
}

type AddressKind string

const (
	AddressKindDeposit    AddressKind = "deposit"
	AddressKindWithdrawal AddressKind = "withdrawal"
)

// WalletAddress stores one deposit or withdrawal address per
// (user, currency, network, kind).
type WalletAddress struct {
	ID        int         `json:"id" gorm:"primaryKey"`
	UserID    int64       `json:"user_id" gorm:"column:user_id;not null;uniqueIndex:idx_wallet_addresses_owner,priority:1"`
	Currency  string      `json:"currency" gorm:"column:currency;type:varchar(16);not null;uniqueIndex:idx_wallet_addresses_owner,priority:2"`
	Network   string      `json:"network" gorm:"column:network;type:varchar(32);not null;uniqueIndex:idx_wallet_addresses_owner,priority:3"`
	Kind      AddressKind `json:"kind" gorm:"column:kind;type:varchar(16);not null;uniqueIndex:idx_wallet_addresses_owner,priority:4"`
	Address   string      `json:"address" gorm:"column:address;type:varchar(255);not null"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func (WalletAddress) TableName() string {
	return "wallet_addresses"
}

type LedgerDirection string

const (
	LedgerDirectionCredit LedgerDirection = "credit"
	LedgerDirectionDebit  LedgerDirection = "debit"
)

// ProcessedTransaction is the at-most-once marker: a provider transaction id
// may appear here exactly once, and the unique index makes a replayed credit
// a no-op. Rows are never deleted while the transaction is user-visible.
type ProcessedTransaction struct {
	ID          int             `json:"id" gorm:"primaryKey"`
	TxID        string          `json:"tx_id" gorm:"column:tx_id;type:varchar(64);not null;uniqueIndex"`
	UserID      int64           `json:"user_id" gorm:"column:user_id;not null;index"`
	TokenAmount int64           `json:"token_amount" gorm:"column:token_amount;not null"`
	Direction   LedgerDirection `json:"direction" gorm:"column:direction;type:varchar(8);not null"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (ProcessedTransaction) TableName() string {
	return "processed_transactions"
}
