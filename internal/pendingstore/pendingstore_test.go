package pendingstore

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelslots/crypto-backend/internal/errs"
	"github.com/pixelslots/crypto-backend/internal/model"
)

func newDeposit(id string, userID int64) *model.Transaction {
	return &model.Transaction{
		ID:       id,
		Type:     model.TransactionTypeDeposit,
		Currency: "BTC",
		Network:  "bitcoin",
		Amount:   decimal.RequireFromString("0.01"),
		UserID:   userID,
		Status:   model.TransactionStatusPending,
	}
}

func TestPutAndGet(t *testing.T) {
	s := New()

	require.NoError(t, s.Put(newDeposit("tx-1", 7)))

	got, ok := s.Get("tx-1")
	require.True(t, ok)
	assert.Equal(t, model.TransactionStatusPending, got.Status)
	assert.False(t, got.CreatedAt.IsZero())

	// Same id cannot be registered twice.
	err := s.Put(newDeposit("tx-1", 7))
	assert.True(t, errs.IsConflict(err))
}

func TestPutRejectsEmptyID(t *testing.T) {
	s := New()
	err := s.Put(&model.Transaction{})
	assert.True(t, errs.IsValidation(err))
}

func TestGetReturnsCopy(t *testing.T) {
	s := New()
	require.NoError(t, s.Put(newDeposit("tx-1", 7)))

	got, _ := s.Get("tx-1")
	got.Status = model.TransactionStatusCompleted

	again, _ := s.Get("tx-1")
	assert.Equal(t, model.TransactionStatusPending, again.Status)
}

func TestTransitionCompareAndSet(t *testing.T) {
	s := New()
	require.NoError(t, s.Put(newDeposit("tx-1", 7)))

	tx, err := s.Transition("tx-1", model.TransactionStatusPending, model.TransactionStatusCompleted, func(tx *model.Transaction) {
		tx.TokenAmount = 10000
	})
	require.NoError(t, err)
	assert.Equal(t, model.TransactionStatusCompleted, tx.Status)
	assert.Equal(t, int64(10000), tx.TokenAmount)

	// Second delivery hits the CAS and conflicts.
	_, err = s.Transition("tx-1", model.TransactionStatusPending, model.TransactionStatusCompleted, nil)
	assert.True(t, errs.IsConflict(err))
}

func TestTransitionNeverLeavesTerminal(t *testing.T) {
	s := New()
	require.NoError(t, s.Put(newDeposit("tx-1", 7)))

	_, err := s.Transition("tx-1", model.TransactionStatusPending, model.TransactionStatusFailed, nil)
	require.NoError(t, err)

	_, err = s.Transition("tx-1", model.TransactionStatusFailed, model.TransactionStatusPending, nil)
	assert.True(t, errs.IsValidation(err))

	_, err = s.Transition("tx-1", model.TransactionStatusFailed, model.TransactionStatusCompleted, nil)
	assert.True(t, errs.IsValidation(err))
}

func TestTransitionRejectsSelfTransition(t *testing.T) {
	s := New()
	require.NoError(t, s.Put(newDeposit("tx-1", 7)))

	_, err := s.Transition("tx-1", model.TransactionStatusPending, model.TransactionStatusPending, nil)
	assert.True(t, errs.IsValidation(err))
}

func TestTransitionUnknownID(t *testing.T) {
	s := New()
	_, err := s.Transition("missing", model.TransactionStatusPending, model.TransactionStatusCompleted, nil)
	assert.True(t, errs.IsConflict(err))
}

func TestMutateKeepsStatus(t *testing.T) {
	s := New()
	require.NoError(t, s.Put(newDeposit("tx-1", 7)))

	tx, err := s.Mutate("tx-1", func(tx *model.Transaction) {
		tx.RetryCount++
		tx.LastError = "provider timeout"
		tx.Status = model.TransactionStatusCompleted // must be ignored
	})
	require.NoError(t, err)
	assert.Equal(t, 1, tx.RetryCount)
	assert.Equal(t, "provider timeout", tx.LastError)
	assert.Equal(t, model.TransactionStatusPending, tx.Status)
}

func TestListOlderThan(t *testing.T) {
	s := New()

	old := newDeposit("tx-old", 7)
	old.CreatedAt = time.Now().Add(-3 * time.Hour)
	require.NoError(t, s.Put(old))
	require.NoError(t, s.Put(newDeposit("tx-new", 7)))

	stale := s.ListOlderThan(2 * time.Hour)
	require.Len(t, stale, 1)
	assert.Equal(t, "tx-old", stale[0].ID)
}

func TestListByUserAndCounts(t *testing.T) {
	s := New()
	require.NoError(t, s.Put(newDeposit("tx-1", 7)))
	require.NoError(t, s.Put(newDeposit("tx-2", 7)))
	require.NoError(t, s.Put(newDeposit("tx-3", 8)))

	w := newDeposit("tx-4", 7)
	w.Type = model.TransactionTypeWithdrawal
	require.NoError(t, s.Put(w))

	assert.Len(t, s.ListByUser(7), 3)
	assert.Equal(t, 2, s.CountByUserAndType(7, model.TransactionTypeDeposit))
	assert.Equal(t, 1, s.CountByUserAndType(7, model.TransactionTypeWithdrawal))
	assert.Equal(t, 4, s.Size())
}

func TestRemove(t *testing.T) {
	s := New()
	require.NoError(t, s.Put(newDeposit("tx-1", 7)))

	s.Remove("tx-1")
	_, ok := s.Get("tx-1")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Size())
}

func TestConcurrentTransitionsOnlyOneWins(t *testing.T) {
	s := New()
	require.NoError(t, s.Put(newDeposit("tx-1", 7)))

	var wg sync.WaitGroup
	wins := make(chan struct{}, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Transition("tx-1", model.TransactionStatusPending, model.TransactionStatusCompleted, nil)
			if err == nil {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	count := 0
	for range wins {
		count++
	}
	assert.Equal(t, 1, count)
}
