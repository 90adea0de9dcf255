package webhook

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pixelslots/crypto-backend/internal/consts"
	"github.com/pixelslots/crypto-backend/internal/errs"
	"github.com/pixelslots/crypto-backend/internal/processor"
	"github.com/pixelslots/crypto-backend/internal/utils/logger"
)

type handler struct {
	processor processor.IProcessor
	logger    *logger.Logger
}

func New(proc processor.IProcessor, logger *logger.Logger) IHandler {
	return &handler{
		processor: proc,
		logger:    logger,
	}
}

// Post godoc
// @Summary Provider webhook
// @Description Validates and settles one provider callback
// @id postWebhook
// @Tags Webhook
// @Accept json
// @Produce json
// @Success 200 {object} map[string]bool
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /webhook/crypto [post]
func (h *handler) Post(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.Error("[Post][io.ReadAll]", map[string]string{
			"error": err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "unreadable body"})
		return
	}

	sig := c.GetHeader(consts.SignatureHeader)
	err = h.processor.Handle(body, sig, c.ClientIP())

	switch {
	case err == nil, errs.IsConflict(err):
		// A conflict means another delivery of the same transaction is
		// already completing it.
		c.JSON(http.StatusOK, gin.H{"success": true})
	case errs.IsAuthentication(err):
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": err.Error()})
	case errs.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
	default:
		// Authenticity passed but processing exhausted its retries. The
		// payload is surfaced through an alert, acknowledge the delivery
		// so the provider does not hammer us with redeliveries.
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
