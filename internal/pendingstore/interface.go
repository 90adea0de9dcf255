package pendingstore

import (
	"time"

	"github.com/pixelslots/crypto-backend/internal/model"
)

// IStore is the in-process registry of transactions that have not reached a
// terminal state, keyed by the provider transaction id.
//
// Transition is compare-and-set: it fails with a ConflictError when the
// stored status differs from the expected one, which is how duplicate
// webhook deliveries are rejected without extra locking in callers.
type IStore interface {
	Put(tx *model.Transaction) error
	Get(txID string) (*model.Transaction, bool)
	Transition(txID string, from, to model.TransactionStatus, mutate func(*model.Transaction)) (*model.Transaction, error)
	// Mutate updates bookkeeping fields (retry count, last error) without
	// touching the status.
	Mutate(txID string, mutate func(*model.Transaction)) (*model.Transaction, error)
	Remove(txID string)
	ListOlderThan(age time.Duration) []*model.Transaction
	ListByUser(userID int64) []*model.Transaction
	CountByUserAndType(userID int64, txType model.TransactionType) int
	Size() int
}
