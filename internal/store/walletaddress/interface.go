package walletaddress

import (
	"gorm.io/gorm"

	"github.com/pixelslots/crypto-backend/internal/model"
)

type IStore interface {
	// Upsert replaces the address stored for (user, currency, network, kind).
	Upsert(tx *gorm.DB, addr *model.WalletAddress) (*model.WalletAddress, error)

	// Get returns the address for (user, currency, network, kind), or
	// gorm.ErrRecordNotFound.
	Get(tx *gorm.DB, userID int64, currency, network string, kind model.AddressKind) (*model.WalletAddress, error)

	// ListByUser returns every stored address for a user.
	ListByUser(tx *gorm.DB, userID int64) ([]model.WalletAddress, error)
}
