package monitor

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pixelslots/crypto-backend/internal/errs"
	"github.com/pixelslots/crypto-backend/internal/event"
	"github.com/pixelslots/crypto-backend/internal/gateway"
	"github.com/pixelslots/crypto-backend/internal/ledger"
	"github.com/pixelslots/crypto-backend/internal/model"
	"github.com/pixelslots/crypto-backend/internal/pendingstore"
	"github.com/pixelslots/crypto-backend/internal/processor"
	"github.com/pixelslots/crypto-backend/internal/store"
	"github.com/pixelslots/crypto-backend/internal/types/environments"
	"github.com/pixelslots/crypto-backend/internal/utils/config"
	"github.com/pixelslots/crypto-backend/internal/utils/logger"
)

type fakeGateway struct {
	checkStatusFn func(txID string) (*gateway.ProviderStatus, error)
	statusCalls   int
}

func (f *fakeGateway) CheckStatus(txID string) (*gateway.ProviderStatus, error) {
	f.statusCalls++
	if f.checkStatusFn != nil {
		return f.checkStatusFn(txID)
	}
	return &gateway.ProviderStatus{TxID: txID, Status: model.WebhookStatusPending}, nil
}

func (f *fakeGateway) GenerateDepositAddress(int64, string, string) (*gateway.DepositAddress, error) {
	return nil, nil
}

func (f *fakeGateway) InitiateWithdrawal(int64, decimal.Decimal, string, string) (*model.Transaction, error) {
	return nil, nil
}

func (f *fakeGateway) SetWithdrawalAddress(int64, string, string, string) error {
	return nil
}

func (f *fakeGateway) NetworkFees(string) (map[string]decimal.Decimal, error) {
	return nil, nil
}

func (f *fakeGateway) PendingForUser(int64) []*model.Transaction {
	return nil
}

func (f *fakeGateway) TokenAmount(currency string, amount decimal.Decimal) (int64, error) {
	if currency == "BTC" {
		return amount.Mul(decimal.NewFromInt(1_000_000)).Floor().IntPart(), nil
	}
	return 0, errs.NewValidation("unsupported currency %q", currency)
}

type fixture struct {
	monitor  IMonitor
	gateway  *fakeGateway
	pending  pendingstore.IStore
	balances ledger.ILedger
	bus      *event.Bus
	events   *[]event.Event
	cfg      *config.AppConfig
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Account{}, &model.ProcessedTransaction{}))

	cfg := &config.AppConfig{}
	cfg.Webhook.RetryAttempts = 1
	cfg.Webhook.MaxProcessingTime = time.Second
	cfg.Monitor.CheckInterval = "@every 5m"
	cfg.Monitor.PendingSLA = 30 * time.Minute
	cfg.Monitor.MaxRetries = 3
	cfg.Monitor.RetryDelay = 0
	cfg.Monitor.FailureRateThreshold = 0.1

	log := logger.New(environments.Test)
	balances := ledger.New(db, store.New(), log)
	pending := pendingstore.New()
	bus := event.NewBus()
	gw := &fakeGateway{}
	proc := processor.New(cfg, pending, balances, gw, bus, log)

	events := &[]event.Event{}
	bus.SubscribeAll(func(e event.Event) {
		*events = append(*events, e)
	})

	return &fixture{
		monitor:  New(cfg, pending, gw, proc, bus, log),
		gateway:  gw,
		pending:  pending,
		balances: balances,
		bus:      bus,
		events:   events,
		cfg:      cfg,
	}
}

func (f *fixture) eventTypes() []event.Type {
	types := make([]event.Type, 0, len(*f.events))
	for _, e := range *f.events {
		types = append(types, e.Type)
	}
	return types
}

func countType(types []event.Type, want event.Type) int {
	n := 0
	for _, t := range types {
		if t == want {
			n++
		}
	}
	return n
}

func TestCheckPendingTransactionsExpiry(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.pending.Put(&model.Transaction{
		ID:        "dep-overdue",
		Type:      model.TransactionTypeDeposit,
		Currency:  "BTC",
		Network:   "bitcoin",
		UserID:    42,
		Status:    model.TransactionStatusPending,
		ExpiresAt: time.Now().Add(-time.Minute),
	}))
	require.NoError(t, f.pending.Put(&model.Transaction{
		ID:        "dep-fresh",
		Type:      model.TransactionTypeDeposit,
		Currency:  "BTC",
		Network:   "bitcoin",
		UserID:    42,
		Status:    model.TransactionStatusPending,
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	f.monitor.CheckPendingTransactions()

	_, ok := f.pending.Get("dep-overdue")
	assert.False(t, ok)
	_, ok = f.pending.Get("dep-fresh")
	assert.True(t, ok)
	assert.Contains(t, f.eventTypes(), event.TypeTransactionExpired)
}

func TestCheckPendingTransactionsReconciliation(t *testing.T) {
	t.Run("recovers a dropped webhook from a status poll", func(t *testing.T) {
		f := newFixture(t)

		require.NoError(t, f.pending.Put(&model.Transaction{
			ID:        "dep-1",
			Type:      model.TransactionTypeDeposit,
			Currency:  "BTC",
			Network:   "bitcoin",
			UserID:    42,
			Status:    model.TransactionStatusPending,
			CreatedAt: time.Now().Add(-time.Hour),
			ExpiresAt: time.Now().Add(time.Hour),
		}))

		f.gateway.checkStatusFn = func(txID string) (*gateway.ProviderStatus, error) {
			return &gateway.ProviderStatus{
				TxID:   txID,
				Status: model.WebhookStatusPaid,
				Amount: decimal.RequireFromString("0.01"),
			}, nil
		}

		f.monitor.CheckPendingTransactions()

		balance, err := f.balances.Balance(42)
		require.NoError(t, err)
		assert.Equal(t, int64(10000), balance)

		_, ok := f.pending.Get("dep-1")
		assert.False(t, ok)
	})

	t.Run("skips entries inside the SLA", func(t *testing.T) {
		f := newFixture(t)

		require.NoError(t, f.pending.Put(&model.Transaction{
			ID:        "dep-1",
			Type:      model.TransactionTypeDeposit,
			Currency:  "BTC",
			Network:   "bitcoin",
			UserID:    42,
			Status:    model.TransactionStatusPending,
			ExpiresAt: time.Now().Add(time.Hour),
		}))

		f.monitor.CheckPendingTransactions()
		assert.Equal(t, 0, f.gateway.statusCalls)
	})

	t.Run("alerts on transactions still pending past the SLA", func(t *testing.T) {
		f := newFixture(t)

		require.NoError(t, f.pending.Put(&model.Transaction{
			ID:        "wd-1",
			Type:      model.TransactionTypeWithdrawal,
			Currency:  "BTC",
			Network:   "bitcoin",
			UserID:    42,
			Status:    model.TransactionStatusPending,
			CreatedAt: time.Now().Add(-time.Hour),
		}))

		f.monitor.CheckPendingTransactions()

		assert.Contains(t, f.eventTypes(), event.TypeAlertLongPending)
		_, ok := f.pending.Get("wd-1")
		assert.True(t, ok)
	})
}

func TestPollSpacingAppliesToAllTypes(t *testing.T) {
	f := newFixture(t)
	f.cfg.Monitor.RetryDelay = time.Hour

	require.NoError(t, f.pending.Put(&model.Transaction{
		ID:        "dep-1",
		Type:      model.TransactionTypeDeposit,
		Currency:  "BTC",
		Network:   "bitcoin",
		UserID:    42,
		Status:    model.TransactionStatusPending,
		CreatedAt: time.Now().Add(-time.Hour),
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	f.monitor.CheckPendingTransactions()
	f.monitor.CheckPendingTransactions()

	assert.Equal(t, 1, f.gateway.statusCalls,
		"an SLA-overdue deposit is polled once per RetryDelay, not once per tick")
}

func TestPollTimestampsPrunedWithPendingSet(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.pending.Put(&model.Transaction{
		ID:        "dep-1",
		Type:      model.TransactionTypeDeposit,
		Currency:  "BTC",
		Network:   "bitcoin",
		UserID:    42,
		Status:    model.TransactionStatusPending,
		CreatedAt: time.Now().Add(-time.Hour),
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	f.gateway.checkStatusFn = func(txID string) (*gateway.ProviderStatus, error) {
		return &gateway.ProviderStatus{
			TxID:   txID,
			Status: model.WebhookStatusPaid,
			Amount: decimal.RequireFromString("0.01"),
		}, nil
	}

	f.monitor.CheckPendingTransactions()

	_, ok := f.pending.Get("dep-1")
	require.False(t, ok, "the poll settled the deposit")

	m := f.monitor.(*monitor)
	m.mu.Lock()
	defer m.mu.Unlock()
	assert.Empty(t, m.lastPoll, "timestamps of settled transactions are dropped")
}

func TestWithdrawalRetryBookkeeping(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.pending.Put(&model.Transaction{
		ID:        "wd-1",
		Type:      model.TransactionTypeWithdrawal,
		Currency:  "BTC",
		Network:   "bitcoin",
		UserID:    42,
		Status:    model.TransactionStatusPending,
		CreatedAt: time.Now().Add(-time.Hour),
	}))

	f.gateway.checkStatusFn = func(txID string) (*gateway.ProviderStatus, error) {
		return nil, errs.NewProvider("PayoutStatus", 503, fmt.Errorf("unavailable"))
	}

	for i := 0; i < 3; i++ {
		f.monitor.CheckPendingTransactions()
	}

	tx, ok := f.pending.Get("wd-1")
	require.True(t, ok)
	assert.Equal(t, 3, tx.RetryCount)
	assert.Equal(t, 1, countType(f.eventTypes(), event.TypeAlertRetriesExhausted))

	// Exhausted withdrawals are no longer polled, and the alert does not
	// repeat.
	polled := f.gateway.statusCalls
	f.monitor.CheckPendingTransactions()
	assert.Equal(t, polled, f.gateway.statusCalls)
	assert.Equal(t, 1, countType(f.eventTypes(), event.TypeAlertRetriesExhausted))
}

func TestStatsAccumulation(t *testing.T) {
	f := newFixture(t)

	f.bus.Publish(event.Event{
		Type:        event.TypeDepositSettled,
		Network:     "bitcoin",
		TokenAmount: 10000,
	})
	f.bus.Publish(event.Event{
		Type:        event.TypeWithdrawalCompleted,
		Network:     "bitcoin",
		TokenAmount: 500,
	})
	f.bus.Publish(event.Event{
		Type:    event.TypeWithdrawalFailed,
		Network: "ethereum",
	})

	stats := f.monitor.GetStats()
	assert.Equal(t, int64(10500), stats.HourlyVolumeTokens)
	assert.Equal(t, int64(2), stats.TotalSettled)
	assert.Equal(t, int64(1), stats.TotalFailed)
	assert.Equal(t, int64(2), stats.Networks["bitcoin"].Success)
	assert.Equal(t, int64(1), stats.Networks["ethereum"].Failure)
}

func TestStatsResets(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.pending.Put(&model.Transaction{
		ID:     "dep-1",
		Type:   model.TransactionTypeDeposit,
		UserID: 42,
		Status: model.TransactionStatusPending,
	}))

	f.bus.Publish(event.Event{
		Type:        event.TypeDepositSettled,
		Network:     "bitcoin",
		TokenAmount: 10000,
	})

	f.monitor.ResetHourlyStats()
	stats := f.monitor.GetStats()
	assert.Equal(t, int64(0), stats.HourlyVolumeTokens)
	assert.Equal(t, int64(1), stats.Networks["bitcoin"].Success, "hourly reset keeps outcome counters")

	f.monitor.ResetDailyStats()
	stats = f.monitor.GetStats()
	assert.Empty(t, stats.Networks)
	assert.Equal(t, int64(0), stats.TotalSettled)

	// A reset never touches the pending set.
	assert.Equal(t, 1, stats.PendingCount)
}

func TestHighFailureRateAlert(t *testing.T) {
	f := newFixture(t)

	f.bus.Publish(event.Event{Type: event.TypeDepositSettled, Network: "tron", TokenAmount: 1})
	for i := 0; i < 9; i++ {
		f.bus.Publish(event.Event{Type: event.TypeWithdrawalFailed, Network: "tron"})
	}

	assert.Equal(t, 1, countType(f.eventTypes(), event.TypeAlertHighFailureRate))

	// Already alerted for this window, no repeat.
	f.bus.Publish(event.Event{Type: event.TypeWithdrawalFailed, Network: "tron"})
	assert.Equal(t, 1, countType(f.eventTypes(), event.TypeAlertHighFailureRate))

	// A new hourly window may alert again.
	f.monitor.ResetHourlyStats()
	f.bus.Publish(event.Event{Type: event.TypeWithdrawalFailed, Network: "tron"})
	assert.Equal(t, 2, countType(f.eventTypes(), event.TypeAlertHighFailureRate))
}

func TestLargeTransactionAlert(t *testing.T) {
	f := newFixture(t)

	f.bus.Publish(event.Event{
		Type:        event.TypeDepositSettled,
		TxID:        "dep-big",
		Network:     "bitcoin",
		TokenAmount: 150_000,
	})

	assert.Equal(t, 1, countType(f.eventTypes(), event.TypeAlertLargeTransaction))
}
