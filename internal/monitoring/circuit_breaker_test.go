package monitoring

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelslots/crypto-backend/internal/gateway/cryptopay"
	"github.com/pixelslots/crypto-backend/internal/types/environments"
	"github.com/pixelslots/crypto-backend/internal/utils/logger"
)

type stubProvider struct {
	err   error
	calls int
}

func (s *stubProvider) CreatePayment(req *cryptopay.CreatePaymentRequest) (*cryptopay.PaymentInfo, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &cryptopay.PaymentInfo{UUID: "uuid-1"}, nil
}

func (s *stubProvider) CreateWithdrawal(req *cryptopay.CreateWithdrawalRequest) (*cryptopay.WithdrawalInfo, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &cryptopay.WithdrawalInfo{UUID: "payout-1"}, nil
}

func (s *stubProvider) PaymentStatus(uuid, orderID string) (*cryptopay.PaymentInfo, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &cryptopay.PaymentInfo{UUID: uuid}, nil
}

func (s *stubProvider) PayoutStatus(uuid, orderID string) (*cryptopay.WithdrawalInfo, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &cryptopay.WithdrawalInfo{UUID: uuid}, nil
}

func (s *stubProvider) NetworkFee(currency, network string) (decimal.Decimal, error) {
	s.calls++
	if s.err != nil {
		return decimal.Zero, s.err
	}
	return decimal.RequireFromString("0.0001"), nil
}

func newBreaker(stub *stubProvider) *CircuitBreakerCryptopay {
	metrics := NewCryptoMetrics(func() int { return 0 })
	log := logger.New(environments.Test)

	return NewCircuitBreakerCryptopay(stub, CircuitBreakerConfig{
		MaxRequests:                 1,
		Interval:                    time.Minute,
		Timeout:                     time.Minute,
		ConsecutiveFailureThreshold: 3,
	}, metrics, log)
}

func TestCircuitBreakerPassesThrough(t *testing.T) {
	stub := &stubProvider{}
	cb := newBreaker(stub)

	info, err := cb.CreatePayment(&cryptopay.CreatePaymentRequest{Currency: "BTC", OrderID: "deposit_1_1"})
	require.NoError(t, err)
	assert.Equal(t, "uuid-1", info.UUID)

	fee, err := cb.NetworkFee("BTC", "bitcoin")
	require.NoError(t, err)
	assert.True(t, fee.Equal(decimal.RequireFromString("0.0001")))
}

func TestCircuitBreakerTripsAfterConsecutiveFailures(t *testing.T) {
	stub := &stubProvider{err: errors.New("provider down")}
	cb := newBreaker(stub)

	for i := 0; i < 3; i++ {
		_, err := cb.PaymentStatus("uuid-1", "")
		require.Error(t, err)
	}
	assert.Equal(t, 3, stub.calls)

	// The breaker is open now, calls fail without reaching the provider.
	_, err := cb.PaymentStatus("uuid-1", "")
	require.Error(t, err)
	assert.Equal(t, 3, stub.calls)
}
