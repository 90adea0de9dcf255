package event

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeDepositSettled      Type = "deposit_settled"
	TypeWithdrawalInitiated Type = "withdrawal_initiated"
	TypeWithdrawalCompleted Type = "withdrawal_completed"
	TypeWithdrawalFailed    Type = "withdrawal_failed"
	TypeRefundSettled       Type = "refund_settled"
	TypeTransactionExpired  Type = "transaction_expired"
	TypeTransactionFailed   Type = "transaction_failed"
	TypeDepositCreated      Type = "deposit_created"

	TypeAlertLongPending      Type = "alert_long_pending"
	TypeAlertHighFailureRate  Type = "alert_high_failure_rate"
	TypeAlertLargeTransaction Type = "alert_large_transaction"
	TypeAlertRetriesExhausted Type = "alert_retries_exhausted"
	TypeAlertUnprocessed      Type = "alert_unprocessed_webhook"
)

// Event is one settlement or alert notification. The monitor and the
// metrics collector subscribe to these, and a bot-notification layer can
// hook in the same way.
type Event struct {
	Type        Type
	TxID        string
	UserID      int64
	TxType      string
	Currency    string
	Network     string
	Amount      decimal.Decimal
	TokenAmount int64
	Detail      string
	At          time.Time
}

type Handler func(Event)

// Bus is a synchronous in-process publish/subscribe hub with typed events.
// Handlers run on the publisher's goroutine, so ordering per publisher is
// the publish order.
type Bus struct {
	mu   sync.RWMutex
	subs map[Type][]Handler
	all  []Handler
}

func NewBus() *Bus {
	return &Bus{
		subs: make(map[Type][]Handler),
	}
}

// Subscribe registers a handler for one event type.
func (b *Bus) Subscribe(t Type, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[t] = append(b.subs[t], h)
}

// SubscribeAll registers a handler for every event type.
func (b *Bus) SubscribeAll(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.all = append(b.all, h)
}

func (b *Bus) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}

	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[e.Type])+len(b.all))
	handlers = append(handlers, b.subs[e.Type]...)
	handlers = append(handlers, b.all...)
	b.mu.RUnlock()

	for _, h := range handlers {
		h(e)
	}
}
