package processedtransaction

import (
	"gorm.io/gorm"

	"github.com/pixelslots/crypto-backend/internal/model"
)

type IStore interface {
	// Create inserts the at-most-once marker for a transaction id.
	Create(tx *gorm.DB, processed *model.ProcessedTransaction) (*model.ProcessedTransaction, error)

	// GetByTxID returns the marker, or gorm.ErrRecordNotFound.
	GetByTxID(tx *gorm.DB, txID string) (*model.ProcessedTransaction, error)

	// ListByUser returns a user's markers, newest first.
	ListByUser(tx *gorm.DB, userID int64, limit int) ([]model.ProcessedTransaction, error)
}
