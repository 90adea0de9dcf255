package monitor

// NetworkStats is the per-network settlement outcome counters since the
// last daily reset.
type NetworkStats struct {
	Success     int64   `json:"success"`
	Failure     int64   `json:"failure"`
	FailureRate float64 `json:"failure_rate"`
}

// Stats is the aggregate view consumed by the admin dashboard.
type Stats struct {
	PendingCount       int                     `json:"pending_count"`
	HourlyVolumeTokens int64                   `json:"hourly_volume_tokens"`
	TotalSettled       int64                   `json:"total_settled"`
	TotalFailed        int64                   `json:"total_failed"`
	Networks           map[string]NetworkStats `json:"networks"`
}

// IMonitor is the background reconciliation loop: it expires stale deposit
// addresses, re-polls the provider for transactions stuck past the SLA and
// aggregates settlement counters for alerting.
type IMonitor interface {
	Start()
	Stop()
	CheckPendingTransactions()
	ResetHourlyStats()
	ResetDailyStats()
	GetStats() *Stats
}
