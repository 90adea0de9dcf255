package monitor

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pixelslots/crypto-backend/internal/errs"
	"github.com/pixelslots/crypto-backend/internal/event"
	"github.com/pixelslots/crypto-backend/internal/gateway"
	"github.com/pixelslots/crypto-backend/internal/model"
	"github.com/pixelslots/crypto-backend/internal/pendingstore"
	"github.com/pixelslots/crypto-backend/internal/processor"
	"github.com/pixelslots/crypto-backend/internal/utils/config"
	"github.com/pixelslots/crypto-backend/internal/utils/logger"
)

const (
	// Failure-rate alerts need a minimum sample before they fire, so one
	// failed transaction on a quiet network does not page anyone.
	minSampleForRateAlert = 10

	// Settlements at or above this many tokens raise a review alert.
	largeTransactionTokens = 100_000
)

type networkCounters struct {
	success int64
	failure int64
}

type monitor struct {
	appConfig *config.AppConfig
	pending   pendingstore.IStore
	gateway   gateway.IGateway
	processor processor.IProcessor
	bus       *event.Bus
	logger    *logger.Logger
	cron      *cron.Cron

	mu           sync.Mutex
	networks     map[string]*networkCounters
	hourlyVolume int64
	totalSettled int64
	totalFailed  int64
	rateAlerted  map[string]bool
	lastPoll     map[string]time.Time
}

func New(
	appConfig *config.AppConfig,
	pending pendingstore.IStore,
	gw gateway.IGateway,
	proc processor.IProcessor,
	bus *event.Bus,
	logger *logger.Logger,
) IMonitor {
	m := &monitor{
		appConfig:   appConfig,
		pending:     pending,
		gateway:     gw,
		processor:   proc,
		bus:         bus,
		logger:      logger,
		networks:    make(map[string]*networkCounters),
		rateAlerted: make(map[string]bool),
		lastPoll:    make(map[string]time.Time),
	}

	for _, t := range []event.Type{
		event.TypeDepositSettled,
		event.TypeWithdrawalCompleted,
		event.TypeRefundSettled,
	} {
		bus.Subscribe(t, m.recordSuccess)
	}
	for _, t := range []event.Type{
		event.TypeWithdrawalFailed,
		event.TypeTransactionExpired,
		event.TypeTransactionFailed,
	} {
		bus.Subscribe(t, m.recordFailure)
	}

	return m
}

func (m *monitor) Start() {
	m.cron = cron.New()

	if _, err := m.cron.AddFunc(m.appConfig.Monitor.CheckInterval, m.CheckPendingTransactions); err != nil {
		m.logger.Fatal("[Start] invalid monitor check interval", map[string]string{
			"interval": m.appConfig.Monitor.CheckInterval,
			"error":    err.Error(),
		})
	}
	m.cron.AddFunc("@hourly", m.ResetHourlyStats)
	m.cron.AddFunc("@daily", m.ResetDailyStats)

	m.cron.Start()
	m.logger.Info("[Start] transaction monitor started", map[string]string{
		"interval": m.appConfig.Monitor.CheckInterval,
	})
}

func (m *monitor) Stop() {
	if m.cron != nil {
		<-m.cron.Stop().Done()
	}
}

// CheckPendingTransactions is one reconciliation tick: expire overdue
// deposit addresses, then re-poll everything stuck past the SLA.
func (m *monitor) CheckPendingTransactions() {
	now := time.Now()

	for _, tx := range m.pending.ListOlderThan(0) {
		if tx.Type == model.TransactionTypeDeposit && !tx.ExpiresAt.IsZero() && now.After(tx.ExpiresAt) {
			m.expire(tx)
			continue
		}

		if now.Sub(tx.CreatedAt) < m.appConfig.Monitor.PendingSLA {
			continue
		}

		m.reconcile(tx, now)
	}

	m.prunePollAttempts()
}

// expire is the only cancellation path: a deposit address past its expiry
// with no payment observed.
func (m *monitor) expire(tx *model.Transaction) {
	_, err := m.pending.Transition(tx.ID, model.TransactionStatusPending, model.TransactionStatusExpired, func(t *model.Transaction) {
		t.LastError = "deposit address expired with no payment"
	})
	if err != nil {
		if !errs.IsConflict(err) {
			m.logger.Error("[expire] failed to expire deposit", map[string]string{
				"txID":  tx.ID,
				"error": err.Error(),
			})
		}
		return
	}
	m.pending.Remove(tx.ID)

	m.bus.Publish(event.Event{
		Type:     event.TypeTransactionExpired,
		TxID:     tx.ID,
		UserID:   tx.UserID,
		TxType:   string(tx.Type),
		Currency: tx.Currency,
		Network:  tx.Network,
		Detail:   "deposit address expired",
	})
}

// reconcile polls the provider for one SLA-overdue transaction and applies
// any terminal status through the processor's settlement path.
func (m *monitor) reconcile(tx *model.Transaction, now time.Time) {
	if tx.Type == model.TransactionTypeWithdrawal && tx.RetryCount >= m.appConfig.Monitor.MaxRetries {
		m.alertExhausted(tx)
		return
	}

	// RetryDelay is the minimum spacing between provider polls of the same
	// transaction, whatever its type, so one tick cannot hammer the provider.
	if last, ok := m.pollAttempt(tx.ID); ok && now.Sub(last) < m.appConfig.Monitor.RetryDelay {
		return
	}
	m.recordPollAttempt(tx.ID, now)

	status, err := m.gateway.CheckStatus(tx.ID)
	if err != nil {
		m.logger.Error("[reconcile] status poll failed", map[string]string{
			"txID":  tx.ID,
			"error": err.Error(),
		})
		if tx.Type == model.TransactionTypeWithdrawal {
			updated, mErr := m.pending.Mutate(tx.ID, func(t *model.Transaction) {
				t.RetryCount++
				t.LastError = err.Error()
			})
			if mErr == nil && updated.RetryCount >= m.appConfig.Monitor.MaxRetries {
				m.alertExhausted(updated)
			}
		}
		return
	}

	if isTerminalProviderStatus(status.Status) {
		if err := m.processor.SettleFromStatus(tx.ID, status.Status, status.Amount); err != nil && !errs.IsConflict(err) {
			m.logger.Error("[reconcile] settlement from poll failed", map[string]string{
				"txID":   tx.ID,
				"status": status.Status,
				"error":  err.Error(),
			})
		}
		return
	}

	m.bus.Publish(event.Event{
		Type:     event.TypeAlertLongPending,
		TxID:     tx.ID,
		UserID:   tx.UserID,
		TxType:   string(tx.Type),
		Currency: tx.Currency,
		Network:  tx.Network,
		Detail: fmt.Sprintf("pending for %s, past the %s SLA",
			now.Sub(tx.CreatedAt).Truncate(time.Second), m.appConfig.Monitor.PendingSLA),
	})
}

func (m *monitor) alertExhausted(tx *model.Transaction) {
	marked := false
	m.pending.Mutate(tx.ID, func(t *model.Transaction) {
		if t.LastError == "retries exhausted" {
			marked = true
			return
		}
		t.LastError = "retries exhausted"
	})
	if marked {
		return
	}

	m.bus.Publish(event.Event{
		Type:     event.TypeAlertRetriesExhausted,
		TxID:     tx.ID,
		UserID:   tx.UserID,
		TxType:   string(tx.Type),
		Currency: tx.Currency,
		Network:  tx.Network,
		Detail:   strconv.Itoa(m.appConfig.Monitor.MaxRetries) + " status retries exhausted",
	})
}

func (m *monitor) recordSuccess(e event.Event) {
	var alerts []event.Event

	m.mu.Lock()
	c := m.counters(e.Network)
	c.success++
	m.totalSettled++
	m.hourlyVolume += e.TokenAmount
	if e.TokenAmount >= largeTransactionTokens {
		alerts = append(alerts, event.Event{
			Type:        event.TypeAlertLargeTransaction,
			TxID:        e.TxID,
			UserID:      e.UserID,
			TxType:      e.TxType,
			Currency:    e.Currency,
			Network:     e.Network,
			Amount:      e.Amount,
			TokenAmount: e.TokenAmount,
			Detail:      "settlement above review threshold",
		})
	}
	m.mu.Unlock()

	for _, a := range alerts {
		m.bus.Publish(a)
	}
}

func (m *monitor) recordFailure(e event.Event) {
	var alerts []event.Event

	m.mu.Lock()
	c := m.counters(e.Network)
	c.failure++
	m.totalFailed++

	total := c.success + c.failure
	rate := float64(c.failure) / float64(total)
	if total >= minSampleForRateAlert &&
		rate > m.appConfig.Monitor.FailureRateThreshold &&
		!m.rateAlerted[e.Network] {
		m.rateAlerted[e.Network] = true
		alerts = append(alerts, event.Event{
			Type:    event.TypeAlertHighFailureRate,
			Network: e.Network,
			Detail:  fmt.Sprintf("failure rate %.2f over %d transactions", rate, total),
		})
	}
	m.mu.Unlock()

	for _, a := range alerts {
		m.bus.Publish(a)
	}
}

func (m *monitor) counters(network string) *networkCounters {
	if network == "" {
		network = "unknown"
	}
	c, ok := m.networks[network]
	if !ok {
		c = &networkCounters{}
		m.networks[network] = c
	}
	return c
}

func (m *monitor) ResetHourlyStats() {
	m.mu.Lock()
	m.hourlyVolume = 0
	m.rateAlerted = make(map[string]bool)
	m.mu.Unlock()

	m.logger.Info("[ResetHourlyStats] hourly counters reset")
}

// ResetDailyStats clears the aggregate counters. The pending set itself is
// never touched by a reset.
func (m *monitor) ResetDailyStats() {
	m.mu.Lock()
	m.networks = make(map[string]*networkCounters)
	m.totalSettled = 0
	m.totalFailed = 0
	m.hourlyVolume = 0
	m.rateAlerted = make(map[string]bool)
	m.mu.Unlock()

	m.logger.Info("[ResetDailyStats] daily counters reset")
}

func (m *monitor) GetStats() *Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	networks := make(map[string]NetworkStats, len(m.networks))
	for name, c := range m.networks {
		total := c.success + c.failure
		rate := 0.0
		if total > 0 {
			rate = float64(c.failure) / float64(total)
		}
		networks[name] = NetworkStats{
			Success:     c.success,
			Failure:     c.failure,
			FailureRate: rate,
		}
	}

	return &Stats{
		PendingCount:       m.pending.Size(),
		HourlyVolumeTokens: m.hourlyVolume,
		TotalSettled:       m.totalSettled,
		TotalFailed:        m.totalFailed,
		Networks:           networks,
	}
}

func (m *monitor) pollAttempt(txID string) (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.lastPoll[txID]
	return t, ok
}

func (m *monitor) recordPollAttempt(txID string, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastPoll[txID] = at
}

// prunePollAttempts drops poll timestamps for transactions that have left
// the pending set, keeping the map bounded by the pending population.
func (m *monitor) prunePollAttempts() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for txID := range m.lastPoll {
		if _, ok := m.pending.Get(txID); !ok {
			delete(m.lastPoll, txID)
		}
	}
}

func isTerminalProviderStatus(status string) bool {
	switch status {
	case model.WebhookStatusPaid,
		model.WebhookStatusCompleted,
		model.WebhookStatusFailed,
		model.WebhookStatusExpired,
		"cancel":
		return true
	}
	return false
}
