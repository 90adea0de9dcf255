package store

import (
	"github.com/pixelslots/crypto-backend/internal/store/account"
	"github.com/pixelslots/crypto-backend/internal/store/processedtransaction"
	"github.com/pixelslots/crypto-backend/internal/store/walletaddress"
)

type Store struct {
	Account              account.IStore
	WalletAddress        walletaddress.IStore
	ProcessedTransaction processedtransaction.IStore
}

func New() *Store {
	return &Store{
		Account:              account.New(),
		WalletAddress:        walletaddress.New(),
		ProcessedTransaction: processedtransaction.New(),
	}
}
