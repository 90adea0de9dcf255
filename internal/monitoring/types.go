package monitoring

import (
	"time"
)

// CircuitBreakerConfig defines the configuration for circuit breakers
type CircuitBreakerConfig struct {
	MaxRequests                 uint32        `json:"max_requests"`
	Interval                    time.Duration `json:"interval"`
	Timeout                     time.Duration `json:"timeout"`
	ConsecutiveFailureThreshold int           `json:"consecutive_failure_threshold"`
}

// DefaultCryptopayBreakerConfig is tuned for the payment provider: trip
// quickly, probe again within a minute.
var DefaultCryptopayBreakerConfig = CircuitBreakerConfig{
	MaxRequests:                 5,
	Interval:                    30 * time.Second,
	Timeout:                     60 * time.Second,
	ConsecutiveFailureThreshold: 3,
}
