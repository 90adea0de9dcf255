package gateway

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pixelslots/crypto-backend/internal/consts"
	"github.com/pixelslots/crypto-backend/internal/errs"
	"github.com/pixelslots/crypto-backend/internal/event"
	"github.com/pixelslots/crypto-backend/internal/gateway/cryptopay"
	"github.com/pixelslots/crypto-backend/internal/ledger"
	"github.com/pixelslots/crypto-backend/internal/model"
	"github.com/pixelslots/crypto-backend/internal/pendingstore"
	"github.com/pixelslots/crypto-backend/internal/store"
	"github.com/pixelslots/crypto-backend/internal/utils/config"
	"github.com/pixelslots/crypto-backend/internal/utils/logger"
)

type gateway struct {
	appConfig *config.AppConfig
	provider  cryptopay.ICryptopay
	pending   pendingstore.IStore
	balances  ledger.ILedger
	db        *gorm.DB
	repo      *store.Store
	bus       *event.Bus
	logger    *logger.Logger
}

func New(
	appConfig *config.AppConfig,
	provider cryptopay.ICryptopay,
	pending pendingstore.IStore,
	balances ledger.ILedger,
	db *gorm.DB,
	repo *store.Store,
	bus *event.Bus,
	logger *logger.Logger,
) IGateway {
	return &gateway{
		appConfig: appConfig,
		provider:  provider,
		pending:   pending,
		balances:  balances,
		db:        db,
		repo:      repo,
		bus:       bus,
		logger:    logger,
	}
}

func (g *gateway) GenerateDepositAddress(userID int64, currency, network string) (*DepositAddress, error) {
	cfg, err := validateCurrencyNetwork(currency, network)
	if err != nil {
		return nil, err
	}

	open := g.pending.CountByUserAndType(userID, model.TransactionTypeDeposit)
	if open >= g.appConfig.Cryptopay.MaxPendingDeposits {
		return nil, errs.NewValidation("user %d already has %d open deposits, limit is %d",
			userID, open, g.appConfig.Cryptopay.MaxPendingDeposits)
	}

	lifetime := g.appConfig.Cryptopay.DepositLifetime
	orderID := newOrderID(consts.OrderKindDeposit, userID)

	info, err := g.provider.CreatePayment(&cryptopay.CreatePaymentRequest{
		Currency: currency,
		Network:  network,
		OrderID:  orderID,
		Lifetime: int(lifetime.Seconds()),
	})
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(lifetime)
	if info.ExpiredAt > 0 {
		expiresAt = time.Unix(info.ExpiredAt, 0)
	}

	// The address is registered as a pending entry right away so the open
	// deposit limit and monitor expiry can see it. The amount stays zero
	// until the provider reports the actual payment.
	tx := &model.Transaction{
		ID:        info.UUID,
		Type:      model.TransactionTypeDeposit,
		Currency:  currency,
		Network:   network,
		Address:   info.Address,
		UserID:    userID,
		Status:    model.TransactionStatusPending,
		ExpiresAt: expiresAt,
	}
	if err := g.pending.Put(tx); err != nil {
		return nil, err
	}

	if _, err := g.repo.WalletAddress.Upsert(g.db, &model.WalletAddress{
		UserID:   userID,
		Currency: currency,
		Network:  network,
		Kind:     model.AddressKindDeposit,
		Address:  info.Address,
	}); err != nil {
		g.logger.Error("[GenerateDepositAddress] failed to persist deposit address", map[string]string{
			"userID": fmt.Sprintf("%d", userID),
			"error":  err.Error(),
		})
	}

	g.bus.Publish(event.Event{
		Type:     event.TypeDepositCreated,
		TxID:     info.UUID,
		UserID:   userID,
		TxType:   string(model.TransactionTypeDeposit),
		Currency: currency,
		Network:  network,
	})

	return &DepositAddress{
		Address:        info.Address,
		ExpiresAt:      expiresAt,
		MinimumDeposit: cfg.MinDeposit,
	}, nil
}

func (g *gateway) InitiateWithdrawal(userID int64, amount decimal.Decimal, currency, network string) (*model.Transaction, error) {
	cfg, err := validateCurrencyNetwork(currency, network)
	if err != nil {
		return nil, err
	}

	if amount.LessThan(cfg.MinWithdrawal) {
		return nil, errs.NewValidation("withdrawal of %s %s is below the minimum of %s",
			amount, currency, cfg.MinWithdrawal)
	}

	destination, err := g.repo.WalletAddress.Get(g.db, userID, currency, network, model.AddressKindWithdrawal)
	if err != nil {
		return nil, errs.NewValidation("no withdrawal address registered for %s on %s", currency, network)
	}

	tokens := ConvertToTokens(cfg, amount)
	if tokens <= 0 {
		return nil, errs.NewValidation("withdrawal of %s %s converts to zero tokens", amount, currency)
	}

	vip, err := g.balances.IsVIP(userID)
	if err != nil {
		return nil, err
	}

	orderID := newOrderID(consts.OrderKindWithdrawal, userID)

	// Debit up front so the user cannot spend the same tokens twice while
	// the withdrawal is in flight. The debit is keyed by the order id, which
	// exists before the provider assigns a transaction id.
	if err := g.balances.RemoveTokens(userID, tokens, orderID); err != nil {
		return nil, err
	}

	fee := amount.Mul(WithdrawalFeeRate(vip))
	sendAmount := amount.Sub(fee)

	info, err := g.provider.CreateWithdrawal(&cryptopay.CreateWithdrawalRequest{
		Amount:     sendAmount.String(),
		Currency:   currency,
		Network:    network,
		OrderID:    orderID,
		Address:    destination.Address,
		IsSubtract: true,
	})
	if err != nil {
		// Compensate the up-front debit. The refund is keyed by the order
		// id since no provider transaction id exists yet.
		refundKey := fmt.Sprintf("%s_%s", consts.OrderKindRefund, orderID)
		if _, refundErr := g.balances.AddTokens(userID, tokens, refundKey); refundErr != nil {
			g.logger.Error("[InitiateWithdrawal] failed to refund after provider rejection", map[string]string{
				"orderID": orderID,
				"error":   refundErr.Error(),
			})
		}
		return nil, err
	}

	tx := &model.Transaction{
		ID:          info.UUID,
		Type:        model.TransactionTypeWithdrawal,
		Currency:    currency,
		Network:     network,
		Amount:      amount,
		TokenAmount: tokens,
		Address:     destination.Address,
		UserID:      userID,
		Status:      model.TransactionStatusPending,
	}
	if err := g.pending.Put(tx); err != nil {
		return nil, err
	}

	g.bus.Publish(event.Event{
		Type:        event.TypeWithdrawalInitiated,
		TxID:        info.UUID,
		UserID:      userID,
		TxType:      string(model.TransactionTypeWithdrawal),
		Currency:    currency,
		Network:     network,
		Amount:      amount,
		TokenAmount: tokens,
	})

	return tx, nil
}

func (g *gateway) SetWithdrawalAddress(userID int64, currency, network, address string) error {
	if _, err := validateCurrencyNetwork(currency, network); err != nil {
		return err
	}
	if err := ValidateAddress(network, address); err != nil {
		return err
	}

	_, err := g.repo.WalletAddress.Upsert(g.db, &model.WalletAddress{
		UserID:   userID,
		Currency: currency,
		Network:  network,
		Kind:     model.AddressKindWithdrawal,
		Address:  address,
	})
	return err
}

func (g *gateway) CheckStatus(txID string) (*ProviderStatus, error) {
	tx, ok := g.pending.Get(txID)
	if !ok {
		return nil, errs.NewValidation("unknown transaction %q", txID)
	}

	switch tx.Type {
	case model.TransactionTypeWithdrawal:
		info, err := g.provider.PayoutStatus(txID, "")
		if err != nil {
			return nil, err
		}
		return &ProviderStatus{TxID: txID, Status: info.Status, Amount: info.Amount, TxHash: info.TxHash}, nil
	default:
		info, err := g.provider.PaymentStatus(txID, "")
		if err != nil {
			return nil, err
		}
		return &ProviderStatus{TxID: txID, Status: info.Status, Amount: info.Amount}, nil
	}
}

func (g *gateway) NetworkFees(network string) (map[string]decimal.Decimal, error) {
	fees := make(map[string]decimal.Decimal)
	var lastErr error

	for _, cfg := range currencies {
		if !cfg.supportsNetwork(network) {
			continue
		}

		fee, err := g.provider.NetworkFee(cfg.Code, network)
		if err != nil {
			lastErr = err
			g.logger.Error("[NetworkFees] fee lookup failed", map[string]string{
				"currency": cfg.Code,
				"network":  network,
				"error":    err.Error(),
			})
			continue
		}
		fees[cfg.Code] = fee
	}

	if len(fees) == 0 {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, errs.NewValidation("no supported currency settles on network %q", network)
	}

	return fees, nil
}

func (g *gateway) PendingForUser(userID int64) []*model.Transaction {
	return g.pending.ListByUser(userID)
}

func (g *gateway) TokenAmount(currency string, amount decimal.Decimal) (int64, error) {
	cfg, ok := currencyConfig(currency)
	if !ok {
		return 0, errs.NewValidation("unsupported currency %q", currency)
	}
	return ConvertToTokens(cfg, amount), nil
}

// newOrderID must be unique per call: the up-front withdrawal debit and its
// compensating refund are keyed by it, so a collision would alias two
// distinct ledger mutations. Nanosecond resolution keeps two submissions in
// the same second apart while staying parseable as "<kind>_<user>_<digits>".
func newOrderID(kind string, userID int64) string {
	return fmt.Sprintf("%s_%d_%d", kind, userID, time.Now().UnixNano())
}
