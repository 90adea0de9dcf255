package processedtransaction

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

func (s *store) Create(tx *gorm.DB, processed *model.ProcessedTransaction) (*model.ProcessedTransaction, error) {
	processed.CreatedAt = time.Now()
	return processed, tx.Create(processed).Error
}

func (s *store) GetByTxID(tx *gorm.DB, txID string) (*model.ProcessedTransaction, error) {
	var processed model.ProcessedTransaction
	if err := tx.Where("tx_id = ?", txID).First(&processed).Error; err != nil {
		return nil, err
	}
	return &processed, nil
}

func (s *store) ListByUser(tx *gorm.DB, userID int64, limit int) ([]model.ProcessedTransaction, error) {
	var processed []model.ProcessedTransaction
	query := tx.Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&processed).Error
	return processed, err
}
