package monitoring

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"

	"github.com/pixelslots/crypto-backend/internal/gateway/cryptopay"
	"github.com/pixelslots/crypto-backend/internal/utils/logger"
)

// CircuitBreakerCryptopay wraps the provider client with a circuit breaker,
// so a provider outage fails fast instead of stacking up timed-out calls.
// It records every call in the provider metrics.
type CircuitBreakerCryptopay struct {
	wrapped cryptopay.ICryptopay
	breaker *gobreaker.CircuitBreaker[any]
	metrics *CryptoMetrics
	logger  *logger.Logger
}

func NewCircuitBreakerCryptopay(wrapped cryptopay.ICryptopay, config CircuitBreakerConfig, metrics *CryptoMetrics, logger *logger.Logger) *CircuitBreakerCryptopay {
	cb := &CircuitBreakerCryptopay{
		wrapped: wrapped,
		metrics: metrics,
		logger:  logger,
	}

	settings := gobreaker.Settings{
		Name:        "cryptopay",
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(config.ConsecutiveFailureThreshold)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("circuit breaker state change", map[string]string{
				"service": name,
				"from":    from.String(),
				"to":      to.String(),
			})
			metrics.UpdateCircuitBreakerState(name, to)
		},
	}

	cb.breaker = gobreaker.NewCircuitBreaker[any](settings)
	return cb
}

func (c *CircuitBreakerCryptopay) CreatePayment(req *cryptopay.CreatePaymentRequest) (*cryptopay.PaymentInfo, error) {
	result, err := c.execute("CreatePayment", func() (any, error) {
		return c.wrapped.CreatePayment(req)
	})
	if err != nil {
		return nil, err
	}
	return result.(*cryptopay.PaymentInfo), nil
}

func (c *CircuitBreakerCryptopay) CreateWithdrawal(req *cryptopay.CreateWithdrawalRequest) (*cryptopay.WithdrawalInfo, error) {
	result, err := c.execute("CreateWithdrawal", func() (any, error) {
		return c.wrapped.CreateWithdrawal(req)
	})
	if err != nil {
		return nil, err
	}
	return result.(*cryptopay.WithdrawalInfo), nil
}

func (c *CircuitBreakerCryptopay) PaymentStatus(uuid, orderID string) (*cryptopay.PaymentInfo, error) {
	result, err := c.execute("PaymentStatus", func() (any, error) {
		return c.wrapped.PaymentStatus(uuid, orderID)
	})
	if err != nil {
		return nil, err
	}
	return result.(*cryptopay.PaymentInfo), nil
}

func (c *CircuitBreakerCryptopay) PayoutStatus(uuid, orderID string) (*cryptopay.WithdrawalInfo, error) {
	result, err := c.execute("PayoutStatus", func() (any, error) {
		return c.wrapped.PayoutStatus(uuid, orderID)
	})
	if err != nil {
		return nil, err
	}
	return result.(*cryptopay.WithdrawalInfo), nil
}

func (c *CircuitBreakerCryptopay) NetworkFee(currency, network string) (decimal.Decimal, error) {
	result, err := c.execute("NetworkFee", func() (any, error) {
		return c.wrapped.NetworkFee(currency, network)
	})
	if err != nil {
		return decimal.Zero, err
	}
	return result.(decimal.Decimal), nil
}

func (c *CircuitBreakerCryptopay) execute(operation string, fn func() (any, error)) (any, error) {
	start := time.Now()
	result, err := c.breaker.Execute(fn)

	status := "success"
	if err != nil {
		status = "error"
		c.logger.Error("[execute] provider call failed", map[string]string{
			"operation": operation,
			"error":     err.Error(),
		})
	}
	c.metrics.RecordProviderCall(operation, status, time.Since(start).Seconds())

	return result, err
}
