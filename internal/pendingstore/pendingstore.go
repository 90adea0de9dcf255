package pendingstore

import (
	"sync"
	"time"

	"github.com/pixelslots/crypto-backend/internal/errs"
	"github.com/pixelslots/crypto-backend/internal/model"
)

type store struct {
	mu  sync.RWMutex
	txs map[string]*model.Transaction
}

func New() IStore {
	return &store{
		txs: make(map[string]*model.Transaction),
	}
}

func (s *store) Put(tx *model.Transaction) error {
	if tx.ID == "" {
		return errs.NewValidation("transaction id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.txs[tx.ID]; ok {
		return errs.NewConflict(tx.ID, "already registered")
	}

	cp := *tx
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	if cp.Status == "" {
		cp.Status = model.TransactionStatusPending
	}
	s.txs[tx.ID] = &cp
	return nil
}

func (s *store) Get(txID string) (*model.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.txs[txID]
	if !ok {
		return nil, false
	}
	cp := *tx
	return &cp, true
}

func (s *store) Transition(txID string, from, to model.TransactionStatus, mutate func(*model.Transaction)) (*model.Transaction, error) {
	if from == to {
		return nil, errs.NewValidation("transition %s -> %s is not allowed", from, to)
	}
	if from.IsTerminal() {
		return nil, errs.NewValidation("cannot transition out of terminal status %s", from)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.txs[txID]
	if !ok {
		return nil, errs.NewConflict(txID, "not found in pending registry")
	}
	if tx.Status != from {
		return nil, errs.NewConflict(txID, "status is "+string(tx.Status)+", expected "+string(from))
	}

	tx.Status = to
	if mutate != nil {
		mutate(tx)
	}

	cp := *tx
	return &cp, nil
}

func (s *store) Mutate(txID string, mutate func(*model.Transaction)) (*model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.txs[txID]
	if !ok {
		return nil, errs.NewConflict(txID, "not found in pending registry")
	}

	status := tx.Status
	mutate(tx)
	tx.Status = status

	cp := *tx
	return &cp, nil
}

func (s *store) Remove(txID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.txs, txID)
}

// ListOlderThan returns copies, so iteration never observes an entry
// mid-transition.
func (s *store) ListOlderThan(age time.Duration) []*model.Transaction {
	cutoff := time.Now().Add(-age)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.Transaction
	for _, tx := range s.txs {
		if tx.CreatedAt.Before(cutoff) {
			cp := *tx
			out = append(out, &cp)
		}
	}
	return out
}

func (s *store) ListByUser(userID int64) []*model.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.Transaction
	for _, tx := range s.txs {
		if tx.UserID == userID {
			cp := *tx
			out = append(out, &cp)
		}
	}
	return out
}

func (s *store) CountByUserAndType(userID int64, txType model.TransactionType) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, tx := range s.txs {
		if tx.UserID == userID && tx.Type == txType {
			count++
		}
	}
	return count
}

func (s *store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.txs)
}
