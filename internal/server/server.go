package server

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pixelslots/crypto-backend/internal/event"
	"github.com/pixelslots/crypto-backend/internal/gateway"
	"github.com/pixelslots/crypto-backend/internal/gateway/cryptopay"
	"github.com/pixelslots/crypto-backend/internal/handler"
	"github.com/pixelslots/crypto-backend/internal/ledger"
	"github.com/pixelslots/crypto-backend/internal/monitor"
	"github.com/pixelslots/crypto-backend/internal/monitoring"
	"github.com/pixelslots/crypto-backend/internal/pendingstore"
	"github.com/pixelslots/crypto-backend/internal/processor"
	"github.com/pixelslots/crypto-backend/internal/store"
	pgstore "github.com/pixelslots/crypto-backend/internal/store/postgres"
	"github.com/pixelslots/crypto-backend/internal/transport/http"
	"github.com/pixelslots/crypto-backend/internal/utils/config"
	"github.com/pixelslots/crypto-backend/internal/utils/logger"
)

func Init() {
	appConfig := config.New()
	logger := logger.New(appConfig.Environment)

	db, err := pgstore.New(appConfig, logger)
	if err != nil {
		logger.Fatal("[Init] failed to connect to database", map[string]string{
			"error": err.Error(),
		})
	}

	repo := store.New()
	bus := event.NewBus()
	pending := pendingstore.New()
	balances := ledger.New(db, repo, logger)

	registry := prometheus.NewRegistry()
	cryptoMetrics := monitoring.NewCryptoMetrics(pending.Size)
	cryptoMetrics.MustRegister(registry)
	cryptoMetrics.ObserveEvents(bus)

	httpMetrics := monitoring.NewHTTPMetrics()
	httpMetrics.MustRegister(registry)

	provider := monitoring.NewCircuitBreakerCryptopay(
		cryptopay.New(appConfig, logger),
		monitoring.DefaultCryptopayBreakerConfig,
		cryptoMetrics,
		logger,
	)

	gw := gateway.New(appConfig, provider, pending, balances, db, repo, bus, logger)
	proc := processor.New(appConfig, pending, balances, gw, bus, logger)

	mon := monitor.New(appConfig, pending, gw, proc, bus, logger)
	mon.Start()

	h := handler.New(appConfig, logger, gw, proc, mon, pending, db, registry)

	httpServer := http.NewHttpServer(appConfig, logger, h, httpMetrics)
	httpServer.Run(":" + appConfig.ApiServer.Port)
}
