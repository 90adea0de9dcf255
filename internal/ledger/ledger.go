package ledger

import (
	"errors"

	"gorm.io/gorm"

	"github.com/pixelslots/crypto-backend/internal/errs"
	"github.com/pixelslots/crypto-backend/internal/model"
	"github.com/pixelslots/crypto-backend/internal/store"
	"github.com/pixelslots/crypto-backend/internal/utils/logger"
)

// errAlreadyProcessed rolls back the surrounding transaction when a replayed
// txID is detected mid-flight. It never escapes this package.
var errAlreadyProcessed = errors.New("transaction already processed")

type ledger struct {
	db     *gorm.DB
	repo   *store.Store
	logger *logger.Logger
}

func New(db *gorm.DB, repo *store.Store, logger *logger.Logger) ILedger {
	return &ledger{
		db:     db,
		repo:   repo,
		logger: logger,
	}
}

func (l *ledger) AddTokens(userID int64, amount int64, txID string) (bool, error) {
	if amount <= 0 {
		return false, errs.NewValidation("credit amount must be positive, got %d", amount)
	}
	if txID == "" {
		return false, errs.NewValidation("credit requires a transaction id")
	}

	applied := false
	err := store.DoInTx(l.db, func(tx *gorm.DB) error {
		_, err := l.repo.ProcessedTransaction.GetByTxID(tx, txID)
		if err == nil {
			return errAlreadyProcessed
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := l.ensureAccount(tx, userID); err != nil {
			return err
		}

		_, err = l.repo.ProcessedTransaction.Create(tx, &model.ProcessedTransaction{
			TxID:        txID,
			UserID:      userID,
			TokenAmount: amount,
			Direction:   model.LedgerDirectionCredit,
		})
		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errAlreadyProcessed
			}
			return err
		}

		if err := l.repo.Account.AdjustBalance(tx, userID, amount); err != nil {
			return err
		}

		applied = true
		return nil
	})
	if errors.Is(err, errAlreadyProcessed) {
		l.logger.Info("[AddTokens] duplicate credit ignored", map[string]string{
			"txID": txID,
		})
		return false, nil
	}
	if err != nil {
		l.logger.Error("[AddTokens] failed to credit tokens", map[string]string{
			"txID":  txID,
			"error": err.Error(),
		})
		return false, err
	}

	return applied, nil
}

func (l *ledger) RemoveTokens(userID int64, amount int64, txID string) error {
	if amount <= 0 {
		return errs.NewValidation("debit amount must be positive, got %d", amount)
	}
	if txID == "" {
		return errs.NewValidation("debit requires a transaction id")
	}

	err := store.DoInTx(l.db, func(tx *gorm.DB) error {
		_, err := l.repo.ProcessedTransaction.GetByTxID(tx, txID)
		if err == nil {
			return errAlreadyProcessed
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		ok, err := l.repo.Account.TryDebit(tx, userID, amount)
		if err != nil {
			return err
		}
		if !ok {
			available := int64(0)
			if acc, err := l.repo.Account.Get(tx, userID); err == nil {
				available = acc.TokenBalance
			}
			return &errs.InsufficientBalanceError{
				UserID:    userID,
				Requested: amount,
				Available: available,
			}
		}

		_, err = l.repo.ProcessedTransaction.Create(tx, &model.ProcessedTransaction{
			TxID:        txID,
			UserID:      userID,
			TokenAmount: amount,
			Direction:   model.LedgerDirectionDebit,
		})
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errAlreadyProcessed
		}
		return err
	})
	if errors.Is(err, errAlreadyProcessed) {
		// Unlike a replayed credit, a replayed debit key is never safe to
		// swallow: the caller would believe a second debit was applied.
		l.logger.Error("[RemoveTokens] debit key already used", map[string]string{
			"txID": txID,
		})
		return errs.NewConflict(txID, "debit already recorded under this transaction id")
	}
	if err != nil && !errs.IsInsufficientBalance(err) {
		l.logger.Error("[RemoveTokens] failed to debit tokens", map[string]string{
			"txID":  txID,
			"error": err.Error(),
		})
	}

	return err
}

func (l *ledger) Balance(userID int64) (int64, error) {
	acc, err := l.repo.Account.Get(l.db, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return acc.TokenBalance, nil
}

func (l *ledger) IsVIP(userID int64) (bool, error) {
	acc, err := l.repo.Account.Get(l.db, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return acc.VIP, nil
}

func (l *ledger) History(userID int64, limit int) ([]model.ProcessedTransaction, error) {
	return l.repo.ProcessedTransaction.ListByUser(l.db, userID, limit)
}

func (l *ledger) ensureAccount(tx *gorm.DB, userID int64) error {
	_, err := l.repo.Account.Get(tx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		_, err = l.repo.Account.Create(tx, &model.Account{UserID: userID})
	}
	return err
}
