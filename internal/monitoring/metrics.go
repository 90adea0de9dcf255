package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker/v2"

	"github.com/pixelslots/crypto-backend/internal/event"
)

// CryptoMetrics contains the settlement-pipeline metrics: webhook outcomes,
// settlements by type, alerts and provider call health.
type CryptoMetrics struct {
	webhooksTotal *prometheus.CounterVec

	settlementsTotal *prometheus.CounterVec

	settledTokens *prometheus.CounterVec

	alertsTotal *prometheus.CounterVec

	providerCalls *prometheus.CounterVec

	providerDuration *prometheus.HistogramVec

	circuitBreakerState *prometheus.GaugeVec

	pendingTransactions prometheus.GaugeFunc
}

// NewCryptoMetrics creates the settlement metrics. pendingSize is sampled on
// scrape for the pending-transactions gauge.
func NewCryptoMetrics(pendingSize func() int) *CryptoMetrics {
	return &CryptoMetrics{
		webhooksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crypto_backend_webhooks_total",
				Help: "Total number of processed webhook deliveries",
			},
			[]string{"outcome"},
		),

		settlementsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crypto_backend_settlements_total",
				Help: "Total number of settled transactions",
			},
			[]string{"type", "network"},
		),

		settledTokens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crypto_backend_settled_tokens_total",
				Help: "Total token volume settled",
			},
			[]string{"type", "network"},
		),

		alertsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crypto_backend_alerts_total",
				Help: "Total number of monitor alerts raised",
			},
			[]string{"alert"},
		),

		providerCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crypto_backend_provider_calls_total",
				Help: "Total number of payment provider API calls",
			},
			[]string{"operation", "status"},
		),

		providerDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crypto_backend_provider_call_duration_seconds",
				Help:    "Duration of payment provider API calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "status"},
		),

		circuitBreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "crypto_backend_circuit_breaker_state",
				Help: "Current state of circuit breakers (0=closed, 1=half-open, 2=open)",
			},
			[]string{"api_name"},
		),

		pendingTransactions: prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "crypto_backend_pending_transactions",
				Help: "Current size of the pending transaction registry",
			},
			func() float64 { return float64(pendingSize()) },
		),
	}
}

// MustRegister registers all metrics with the provided registry
func (m *CryptoMetrics) MustRegister(registry *prometheus.Registry) {
	registry.MustRegister(
		m.webhooksTotal,
		m.settlementsTotal,
		m.settledTokens,
		m.alertsTotal,
		m.providerCalls,
		m.providerDuration,
		m.circuitBreakerState,
		m.pendingTransactions,
	)
}

// RecordWebhook records one processed delivery by outcome (settled,
// rejected, conflict, failed).
func (m *CryptoMetrics) RecordWebhook(outcome string) {
	m.webhooksTotal.WithLabelValues(outcome).Inc()
}

// RecordProviderCall records one provider API call with duration and status.
func (m *CryptoMetrics) RecordProviderCall(operation, status string, duration float64) {
	m.providerCalls.WithLabelValues(operation, status).Inc()
	m.providerDuration.WithLabelValues(operation, status).Observe(duration)
}

// UpdateCircuitBreakerState updates the circuit breaker state metric
func (m *CryptoMetrics) UpdateCircuitBreakerState(apiName string, state gobreaker.State) {
	m.circuitBreakerState.WithLabelValues(apiName).Set(float64(state))
}

// ObserveEvents wires the metrics to the settlement event bus, so every
// settlement and alert increments its counter without the pipeline knowing
// about prometheus.
func (m *CryptoMetrics) ObserveEvents(bus *event.Bus) {
	settlements := map[event.Type]bool{
		event.TypeDepositSettled:      true,
		event.TypeWithdrawalCompleted: true,
		event.TypeWithdrawalFailed:    true,
		event.TypeRefundSettled:       true,
		event.TypeTransactionExpired:  true,
		event.TypeTransactionFailed:   true,
	}
	alerts := map[event.Type]bool{
		event.TypeAlertLongPending:      true,
		event.TypeAlertHighFailureRate:  true,
		event.TypeAlertLargeTransaction: true,
		event.TypeAlertRetriesExhausted: true,
		event.TypeAlertUnprocessed:      true,
	}

	bus.SubscribeAll(func(e event.Event) {
		switch {
		case settlements[e.Type]:
			m.settlementsTotal.WithLabelValues(string(e.Type), e.Network).Inc()
			if e.TokenAmount > 0 {
				m.settledTokens.WithLabelValues(string(e.Type), e.Network).Add(float64(e.TokenAmount))
			}
		case alerts[e.Type]:
			m.alertsTotal.WithLabelValues(string(e.Type)).Inc()
		}
	})
}
