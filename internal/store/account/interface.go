package account

import (
	"gorm.io/gorm"

	"github.com/pixelslots/crypto-backend/internal/model"
)

type IStore interface {
	// Get returns the account, or gorm.ErrRecordNotFound.
	Get(tx *gorm.DB, userID int64) (*model.Account, error)

	// Create inserts a fresh account with a zero balance.
	Create(tx *gorm.DB, acc *model.Account) (*model.Account, error)

	// AdjustBalance applies a signed delta to the balance in a single
	// atomic UPDATE.
	AdjustBalance(tx *gorm.DB, userID int64, delta int64) error

	// TryDebit subtracts amount only when the balance covers it. Returns
	// false without touching the row when it does not.
	TryDebit(tx *gorm.DB, userID int64, amount int64) (bool, error)
}
