package account

import (
	"time"

	"gorm.io/gorm"

	"github.com/pixelslots/crypto-backend/internal/model"
)

type store struct {
}

func New() IStore {
	return &store{}
}

func (s *store) Get(tx *gorm.DB, userID int64) (*model.Account, error) {
	var acc model.Account
	if err := tx.Where("user_id = ?", userID).First(&acc).Error; err != nil {
		return nil, err
	}
	return &acc, nil
}

func (s *store) Create(tx *gorm.DB, acc *model.Account) (*model.Account, error) {
	acc.CreatedAt = time.Now()
	acc.UpdatedAt = time.Now()
	return acc, tx.Create(acc).Error
}

func (s *store) AdjustBalance(tx *gorm.DB, userID int64, delta int64) error {
	return tx.Model(&model.Account{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"token_balance": gorm.Expr("token_balance + ?", delta),
			"updated_at":    time.Now(),
		}).Error
}

func (s *store) TryDebit(tx *gorm.DB, userID int64, amount int64) (bool, error) {
	res := tx.Model(&model.Account{}).
		Where("user_id = ? AND token_balance >= ?", userID, amount).
		Updates(map[string]interface{}{
			"token_balance": gorm.Expr("token_balance - ?", amount),
			"updated_at":    time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
