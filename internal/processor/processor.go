package processor

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pixelslots/crypto-backend/internal/errs"
	"github.com/pixelslots/crypto-backend/internal/event"
	"github.com/pixelslots/crypto-backend/internal/ledger"
	"github.com/pixelslots/crypto-backend/internal/model"
	"github.com/pixelslots/crypto-backend/internal/pendingstore"
	"github.com/pixelslots/crypto-backend/internal/txlock"
	"github.com/pixelslots/crypto-backend/internal/utils/config"
	"github.com/pixelslots/crypto-backend/internal/utils/logger"
	"github.com/pixelslots/crypto-backend/internal/utils/signature"
)

// order_id shape: "<kind>_<userId>_<timestamp>".
var orderIDRegex = regexp.MustCompile(`^(deposit|withdrawal|refund)_(\d+)_(\d+)$`)

// tokenConverter is the slice of the gateway the processor needs: native
// amount to integer token units.
type tokenConverter interface {
	TokenAmount(currency string, amount decimal.Decimal) (int64, error)
}

type processor struct {
	appConfig *config.AppConfig
	pending   pendingstore.IStore
	balances  ledger.ILedger
	converter tokenConverter
	locks     *txlock.KeyedMutex
	bus       *event.Bus
	logger    *logger.Logger

	mu       sync.Mutex
	inflight map[string]time.Time
}

func New(
	appConfig *config.AppConfig,
	pending pendingstore.IStore,
	balances ledger.ILedger,
	converter tokenConverter,
	bus *event.Bus,
	logger *logger.Logger,
) IProcessor {
	return &processor{
		appConfig: appConfig,
		pending:   pending,
		balances:  balances,
		converter: converter,
		locks:     txlock.New(),
		bus:       bus,
		logger:    logger,
		inflight:  make(map[string]time.Time),
	}
}

func (p *processor) Handle(body []byte, sig string, sourceIP string) error {
	if !signature.Verify(body, p.appConfig.Cryptopay.WebhookKey, sig) {
		p.logger.Error("[Handle] webhook signature mismatch", map[string]string{
			"sourceIP": sourceIP,
		})
		return errs.NewAuthentication("signature mismatch")
	}

	if allowed := p.appConfig.Cryptopay.AllowedIPs; len(allowed) > 0 {
		ok := false
		for _, ip := range allowed {
			if ip == sourceIP {
				ok = true
				break
			}
		}
		if !ok {
			p.logger.Error("[Handle] webhook from disallowed source", map[string]string{
				"sourceIP": sourceIP,
			})
			return errs.NewAuthentication("source " + sourceIP + " not allowed")
		}
	}

	var payload model.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return errs.NewValidation("malformed webhook body: %v", err)
	}
	if payload.UUID == "" {
		return errs.NewValidation("webhook missing transaction id")
	}

	matches := orderIDRegex.FindStringSubmatch(payload.OrderID)
	if matches == nil {
		return errs.NewValidation("malformed order_id %q", payload.OrderID)
	}
	userID, err := strconv.ParseInt(matches[2], 10, 64)
	if err != nil {
		return errs.NewValidation("malformed order_id %q", payload.OrderID)
	}

	if err := p.markInflight(payload.UUID); err != nil {
		return err
	}
	defer p.clearInflight(payload.UUID)

	unlock := p.locks.Lock(payload.UUID)
	defer unlock()

	// Authenticity is settled at this point. Processing failures are
	// retried without re-validating the delivery.
	var lastErr error
	for attempt := 1; attempt <= p.appConfig.Webhook.RetryAttempts; attempt++ {
		lastErr = p.route(&payload, userID)
		if lastErr == nil || !isTransient(lastErr) {
			return lastErr
		}

		p.logger.Error("[Handle] webhook processing failed", map[string]string{
			"txID":    payload.UUID,
			"attempt": strconv.Itoa(attempt),
			"error":   lastErr.Error(),
		})
		if attempt < p.appConfig.Webhook.RetryAttempts {
			time.Sleep(p.appConfig.Webhook.RetryDelay)
		}
	}

	p.bus.Publish(event.Event{
		Type:   event.TypeAlertUnprocessed,
		TxID:   payload.UUID,
		UserID: userID,
		TxType: payload.Type,
		Detail: fmt.Sprintf("webhook unprocessed after %d attempts: %v",
			p.appConfig.Webhook.RetryAttempts, lastErr),
	})
	return lastErr
}

// SettleFromStatus applies the webhook settlement path to a provider status
// discovered by polling. The pending entry supplies the fields a webhook
// body would carry.
func (p *processor) SettleFromStatus(txID string, providerStatus string, amount decimal.Decimal) error {
	entry, ok := p.pending.Get(txID)
	if !ok {
		return errs.NewConflict(txID, "not in the pending set")
	}

	payload := &model.WebhookPayload{
		Status:   providerStatus,
		UUID:     txID,
		Amount:   amount,
		Currency: entry.Currency,
		Network:  entry.Network,
	}
	switch entry.Type {
	case model.TransactionTypeWithdrawal:
		payload.Type = model.WebhookTypeWithdrawal
		if providerStatus == model.WebhookStatusPaid {
			payload.Status = model.WebhookStatusCompleted
		}
	case model.TransactionTypeRefund:
		payload.Type = model.WebhookTypeRefund
		if providerStatus == model.WebhookStatusPaid {
			payload.Status = model.WebhookStatusCompleted
		}
	default:
		payload.Type = model.WebhookTypePayment
	}

	unlock := p.locks.Lock(txID)
	defer unlock()

	return p.route(payload, entry.UserID)
}

// route dispatches one authenticated payload by (type, status). The caller
// holds the per-transaction lock.
func (p *processor) route(payload *model.WebhookPayload, userID int64) error {
	switch {
	case payload.Type == model.WebhookTypePayment && payload.Status == model.WebhookStatusPaid:
		return p.settleCredit(payload, userID, model.TransactionStatusCompleted, event.TypeDepositSettled)

	case payload.Type == model.WebhookTypePayment && payload.Status == model.WebhookStatusPending:
		// Payment observed on chain but not confirmed yet. Bookkeeping only.
		p.pending.Mutate(payload.UUID, func(tx *model.Transaction) {
			tx.LastError = ""
		})
		return nil

	case payload.Type == model.WebhookTypePayment && payload.Status == model.WebhookStatusExpired:
		return p.markTerminal(payload, userID, model.TransactionStatusExpired, event.TypeTransactionExpired)

	case payload.Type == model.WebhookTypePayment && payload.Status == model.WebhookStatusFailed:
		return p.markTerminal(payload, userID, model.TransactionStatusFailed, event.TypeTransactionFailed)

	case payload.Type == model.WebhookTypeWithdrawal && payload.Status == model.WebhookStatusCompleted:
		return p.completeWithdrawal(payload, userID)

	case payload.Type == model.WebhookTypeWithdrawal && payload.Status == model.WebhookStatusFailed:
		return p.refundWithdrawal(payload, userID)

	case payload.Type == model.WebhookTypeRefund && payload.Status == model.WebhookStatusCompleted:
		return p.settleCredit(payload, userID, model.TransactionStatusCompleted, event.TypeRefundSettled)

	default:
		return errs.NewValidation("unsupported webhook (type=%q, status=%q)", payload.Type, payload.Status)
	}
}

// settleCredit credits the token equivalent of a paid deposit or completed
// refund. The ledger's processed-transaction marker is the at-most-once
// guarantee, so a replay that slips past the dedup window is still harmless.
func (p *processor) settleCredit(payload *model.WebhookPayload, userID int64, to model.TransactionStatus, eventType event.Type) error {
	tokens, err := p.converter.TokenAmount(payload.Currency, payload.Amount)
	if err != nil {
		return err
	}

	applied := false
	if tokens > 0 {
		applied, err = p.balances.AddTokens(userID, tokens, payload.UUID)
		if err != nil {
			return err
		}
	}

	_, err = p.pending.Transition(payload.UUID, model.TransactionStatusPending, to, func(tx *model.Transaction) {
		tx.Amount = payload.Amount
		if tx.TokenAmount == 0 {
			tx.TokenAmount = tokens
		}
	})
	if err != nil && !errs.IsConflict(err) {
		return err
	}
	p.pending.Remove(payload.UUID)

	if applied {
		p.bus.Publish(event.Event{
			Type:        eventType,
			TxID:        payload.UUID,
			UserID:      userID,
			TxType:      payload.Type,
			Currency:    payload.Currency,
			Network:     payload.Network,
			Amount:      payload.Amount,
			TokenAmount: tokens,
		})
	}
	return nil
}

// markTerminal moves a payment entry to a no-ledger terminal state.
func (p *processor) markTerminal(payload *model.WebhookPayload, userID int64, to model.TransactionStatus, eventType event.Type) error {
	tx, err := p.pending.Transition(payload.UUID, model.TransactionStatusPending, to, func(tx *model.Transaction) {
		tx.LastError = fmt.Sprintf("provider reported %s", payload.Status)
	})
	if err != nil {
		if errs.IsConflict(err) {
			return nil
		}
		return err
	}
	p.pending.Remove(payload.UUID)

	p.bus.Publish(event.Event{
		Type:     eventType,
		TxID:     payload.UUID,
		UserID:   userID,
		TxType:   payload.Type,
		Currency: tx.Currency,
		Network:  tx.Network,
		Detail:   fmt.Sprintf("terminal status %s", to),
	})
	return nil
}

// completeWithdrawal closes out a withdrawal whose debit was applied at
// initiation. No further ledger effect.
func (p *processor) completeWithdrawal(payload *model.WebhookPayload, userID int64) error {
	tx, err := p.pending.Transition(payload.UUID, model.TransactionStatusPending, model.TransactionStatusCompleted, nil)
	if err != nil {
		if errs.IsConflict(err) {
			return nil
		}
		return err
	}
	p.pending.Remove(payload.UUID)

	p.bus.Publish(event.Event{
		Type:        event.TypeWithdrawalCompleted,
		TxID:        payload.UUID,
		UserID:      userID,
		TxType:      payload.Type,
		Currency:    tx.Currency,
		Network:     tx.Network,
		Amount:      tx.Amount,
		TokenAmount: tx.TokenAmount,
	})
	return nil
}

// refundWithdrawal credits back exactly what was debited at initiation,
// keyed by the provider transaction id so a redelivery cannot double-credit.
func (p *processor) refundWithdrawal(payload *model.WebhookPayload, userID int64) error {
	tokens := int64(0)
	entry, ok := p.pending.Get(payload.UUID)
	if ok && entry.TokenAmount > 0 {
		tokens = entry.TokenAmount
	} else if converted, err := p.converter.TokenAmount(payload.Currency, payload.Amount); err == nil {
		tokens = converted
	}

	applied := false
	if tokens > 0 {
		var err error
		applied, err = p.balances.AddTokens(userID, tokens, payload.UUID)
		if err != nil {
			return err
		}
	}

	var currency, network string
	if entry != nil {
		currency, network = entry.Currency, entry.Network
	}

	_, err := p.pending.Transition(payload.UUID, model.TransactionStatusPending, model.TransactionStatusFailed, func(tx *model.Transaction) {
		tx.LastError = "provider reported withdrawal failure"
	})
	if err != nil && !errs.IsConflict(err) {
		return err
	}
	p.pending.Remove(payload.UUID)

	if applied {
		p.bus.Publish(event.Event{
			Type:        event.TypeWithdrawalFailed,
			TxID:        payload.UUID,
			UserID:      userID,
			TxType:      payload.Type,
			Currency:    currency,
			Network:     network,
			Amount:      payload.Amount,
			TokenAmount: tokens,
			Detail:      "debit refunded",
		})
	}
	return nil
}

// markInflight claims the processing window for a transaction id. A second
// delivery inside the window is rejected as a conflict, which the transport
// layer reports as success to stop provider retries.
func (p *processor) markInflight(txID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if started, ok := p.inflight[txID]; ok {
		if time.Since(started) < p.appConfig.Webhook.MaxProcessingTime {
			return errs.NewConflict(txID, "already being processed")
		}
	}
	p.inflight[txID] = time.Now()
	return nil
}

func (p *processor) clearInflight(txID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.inflight, txID)
}

// isTransient reports whether a processing error is worth retrying.
// Validation, authentication, conflict and insufficient-balance outcomes are
// deterministic and final.
func isTransient(err error) bool {
	return !errs.IsValidation(err) &&
		!errs.IsAuthentication(err) &&
		!errs.IsConflict(err) &&
		!errs.IsInsufficientBalance(err)
}
