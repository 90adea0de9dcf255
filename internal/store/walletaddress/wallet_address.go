package walletaddress

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pixelslots/crypto-backend/internal/model"
)

type store struct {
}

func New() IStore {
	return &store{}
}

func (s *store) Upsert(tx *gorm.DB, addr *model.WalletAddress) (*model.WalletAddress, error) {
	addr.UpdatedAt = time.Now()
	if addr.CreatedAt.IsZero() {
		addr.CreatedAt = addr.UpdatedAt
	}

	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"}, {Name: "currency"}, {Name: "network"}, {Name: "kind"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"address", "updated_at"}),
	}).Create(addr).Error
	if err != nil {
		return nil, err
	}
	return addr, nil
}

func (s *store) Get(tx *gorm.DB, userID int64, currency, network string, kind model.AddressKind) (*model.WalletAddress, error) {
	var addr model.WalletAddress
	err := tx.Where("user_id = ? AND currency = ? AND network = ? AND kind = ?",
		userID, currency, network, kind).First(&addr).Error
	if err != nil {
		return nil, err
	}
	return &addr, nil
}

func (s *store) ListByUser(tx *gorm.DB, userID int64) ([]model.WalletAddress, error) {
	var addrs []model.WalletAddress
	err := tx.Where("user_id = ?", userID).Find(&addrs).Error
	return addrs, err
}
