package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/pixelslots/crypto-backend/internal/gateway"
	"github.com/pixelslots/crypto-backend/internal/handler/crypto"
	"github.com/pixelslots/crypto-backend/internal/handler/health"
	"github.com/pixelslots/crypto-backend/internal/handler/metrics"
	"github.com/pixelslots/crypto-backend/internal/handler/stats"
	"github.com/pixelslots/crypto-backend/internal/handler/transaction"
	"github.com/pixelslots/crypto-backend/internal/handler/webhook"
	"github.com/pixelslots/crypto-backend/internal/monitor"
	"github.com/pixelslots/crypto-backend/internal/pendingstore"
	"github.com/pixelslots/crypto-backend/internal/processor"
	"github.com/pixelslots/crypto-backend/internal/store/processedtransaction"
	"github.com/pixelslots/crypto-backend/internal/utils/config"
	"github.com/pixelslots/crypto-backend/internal/utils/logger"
)

type Handler struct {
	CryptoHandler      crypto.IHandler
	WebhookHandler     webhook.IHandler
	TransactionHandler transaction.IHandler
	StatsHandler       stats.IHandler
	HealthHandler      health.IHealthHandler
	MetricsHandler     *metrics.MetricsHandler
}

func New(appConfig *config.AppConfig, logger *logger.Logger,
	gw gateway.IGateway,
	proc processor.IProcessor,
	mon monitor.IMonitor,
	pending pendingstore.IStore,
	db *gorm.DB,
	metricsRegistry *prometheus.Registry) *Handler {
	return &Handler{
		CryptoHandler:      crypto.New(gw, logger, appConfig),
		WebhookHandler:     webhook.New(proc, logger),
		TransactionHandler: transaction.New(db, processedtransaction.New(), pending),
		StatsHandler:       stats.New(mon),
		HealthHandler:      health.New(appConfig, logger, db),
		MetricsHandler:     metrics.NewMetricsHandler(metricsRegistry, appConfig.ApiServer.MetricsToken),
	}
}
