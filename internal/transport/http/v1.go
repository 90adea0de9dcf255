package http

import (
	"github.com/gin-gonic/gin"

	"github.com/pixelslots/crypto-backend/internal/handler"
	"github.com/pixelslots/crypto-backend/internal/utils/config"
	"github.com/pixelslots/crypto-backend/internal/utils/logger"
)

func loadV1Routes(r *gin.Engine, h *handler.Handler, appConfig *config.AppConfig, logger *logger.Logger) {
	// The provider calls this with its own retry policy, keep it outside
	// the rate-limited groups.
	r.POST("/webhook/crypto", h.WebhookHandler.Post)

	r.GET("/healthz", h.HealthHandler.Basic)
	r.GET("/metrics", h.MetricsHandler.Handler())

	v1 := r.Group("/api/v1")
	v1.Use(rateLimitMiddleware(logger))

	crypto := v1.Group("/crypto")
	{
		crypto.POST("/deposit-address", h.CryptoHandler.GenerateDepositAddress)
		crypto.POST("/withdrawals", h.CryptoHandler.InitiateWithdrawal)
		crypto.PUT("/withdrawal-address", h.CryptoHandler.SetWithdrawalAddress)
		crypto.GET("/pending", h.CryptoHandler.ListPending)
		crypto.GET("/network-fees/:network", h.CryptoHandler.GetNetworkFees)
	}

	transactions := v1.Group("/transactions")
	{
		transactions.GET("", h.TransactionHandler.GetTransactions)
		transactions.GET("/:id", h.TransactionHandler.GetTransaction)
	}

	v1.GET("/stats", h.StatsHandler.GetStats)
	v1.GET("/health/db", h.HealthHandler.Database)
}
