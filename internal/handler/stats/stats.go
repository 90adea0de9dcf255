package stats

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pixelslots/crypto-backend/internal/monitor"
	"github.com/pixelslots/crypto-backend/internal/view"
)

type handler struct {
	monitor monitor.IMonitor
}

func New(mon monitor.IMonitor) IHandler {
	return &handler{
		monitor: mon,
	}
}

// GetStats godoc
// @Summary Settlement statistics
// @Description Returns pending counts, per-network rates and hourly volume
// @id getStats
// @Tags Stats
// @Produce json
// @Success 200 {object} view.MessageResponse
// @Router /stats [get]
func (h *handler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, view.CreateResponse(h.monitor.GetStats(), nil, nil, ""))
}
