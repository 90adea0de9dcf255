package ledger

import (
	"github.com/pixelslots/crypto-backend/internal/model"
)

// ILedger is the only path that mutates token balances. Credits and debits
// are keyed by a transaction id and applied at most once.
type ILedger interface {
	// AddTokens credits amount to the user's balance, creating the account
	// on first use. Returns false when txID was already processed, in which
	// case the balance is untouched.
	AddTokens(userID int64, amount int64, txID string) (bool, error)

	// RemoveTokens debits amount from the user's balance. Returns an
	// InsufficientBalanceError without mutating anything when the balance
	// does not cover the amount, and a ConflictError when txID was already
	// used: a debit that silently no-ops would let its caller hand out the
	// same tokens twice.
	RemoveTokens(userID int64, amount int64, txID string) error

	// Balance returns the current token balance, zero for unknown users.
	Balance(userID int64) (int64, error)

	// IsVIP reports the user's fee tier, false for unknown users.
	IsVIP(userID int64) (bool, error)

	// History returns the user's ledger entries, newest first.
	History(userID int64, limit int) ([]model.ProcessedTransaction, error)
}
