package metrics

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsHandler handles the Prometheus metrics endpoint
type MetricsHandler struct {
	registry  *prometheus.Registry
	authToken string
}

// NewMetricsHandler creates a new metrics handler. An empty authToken leaves
// the endpoint open.
func NewMetricsHandler(registry *prometheus.Registry, authToken string) *MetricsHandler {
	return &MetricsHandler{
		registry:  registry,
		authToken: authToken,
	}
}

// Handler returns a Gin handler function for the /metrics endpoint
func (h *MetricsHandler) Handler() gin.HandlerFunc {
	handler := promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})

	return func(c *gin.Context) {
		if h.authToken != "" {
			token := c.GetHeader("Authorization")
			expected := "Bearer " + h.authToken
			if subtle.ConstantTimeCompare([]byte(token), []byte(expected)) != 1 {
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}
		}
		gin.WrapH(handler)(c)
	}
}
