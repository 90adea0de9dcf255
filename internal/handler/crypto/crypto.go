package crypto

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/pixelslots/crypto-backend/internal/errs"
	"github.com/pixelslots/crypto-backend/internal/gateway"
	"github.com/pixelslots/crypto-backend/internal/utils/config"
	"github.com/pixelslots/crypto-backend/internal/utils/logger"
	"github.com/pixelslots/crypto-backend/internal/view"
)

type DepositAddressRequest struct {
	UserID   int64  `json:"user_id" binding:"required"`
	Currency string `json:"currency" binding:"required"`
	Network  string `json:"network" binding:"required"`
}

type WithdrawalRequest struct {
	UserID   int64  `json:"user_id" binding:"required"`
	Amount   string `json:"amount" binding:"required"`
	Currency string `json:"currency" binding:"required"`
	Network  string `json:"network" binding:"required"`
}

type WithdrawalAddressRequest struct {
	UserID   int64  `json:"user_id" binding:"required"`
	Currency string `json:"currency" binding:"required"`
	Network  string `json:"network" binding:"required"`
	Address  string `json:"address" binding:"required"`
}

type PendingQuery struct {
	UserID int64 `form:"user_id" binding:"required"`
}

type handler struct {
	gateway   gateway.IGateway
	logger    *logger.Logger
	appConfig *config.AppConfig
}

func New(gw gateway.IGateway, logger *logger.Logger, appConfig *config.AppConfig) IHandler {
	return &handler{
		gateway:   gw,
		logger:    logger,
		appConfig: appConfig,
	}
}

// GenerateDepositAddress godoc
// @Summary Issue a deposit address
// @Description Issues a provider deposit address for a user, currency and network
// @id generateDepositAddress
// @Tags Crypto
// @Accept json
// @Produce json
// @Param request body DepositAddressRequest true "Deposit address parameters"
// @Success 200 {object} view.MessageResponse
// @Failure 400 {object} view.ErrorResponse
// @Failure 500 {object} view.ErrorResponse
// @Router /crypto/deposit-address [post]
func (h *handler) GenerateDepositAddress(c *gin.Context) {
	var req DepositAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("[GenerateDepositAddress][ShouldBindJSON]", map[string]string{
			"error": err.Error(),
		})
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, req, "invalid request"))
		return
	}

	if err := validator.New().Struct(req); err != nil {
		h.logger.Error("[GenerateDepositAddress][Validator]", map[string]string{
			"error": err.Error(),
		})
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, req, "invalid request"))
		return
	}

	addr, err := h.gateway.GenerateDepositAddress(req.UserID, req.Currency, req.Network)
	if err != nil {
		h.respondError(c, "GenerateDepositAddress", err)
		return
	}

	c.JSON(http.StatusOK, view.CreateResponse(addr, nil, nil, ""))
}

// InitiateWithdrawal godoc
// @Summary Initiate a withdrawal
// @Description Debits the token ledger and submits a withdrawal to the provider
// @id initiateWithdrawal
// @Tags Crypto
// @Accept json
// @Produce json
// @Param request body WithdrawalRequest true "Withdrawal parameters"
// @Success 200 {object} view.MessageResponse
// @Failure 400 {object} view.ErrorResponse
// @Failure 500 {object} view.ErrorResponse
// @Router /crypto/withdrawals [post]
func (h *handler) InitiateWithdrawal(c *gin.Context) {
	var req WithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("[InitiateWithdrawal][ShouldBindJSON]", map[string]string{
			"error": err.Error(),
		})
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, req, "invalid request"))
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, req, "invalid amount"))
		return
	}

	tx, err := h.gateway.InitiateWithdrawal(req.UserID, amount, req.Currency, req.Network)
	if err != nil {
		h.respondError(c, "InitiateWithdrawal", err)
		return
	}

	c.JSON(http.StatusOK, view.CreateResponse(tx, nil, nil, ""))
}

// SetWithdrawalAddress godoc
// @Summary Register a withdrawal address
// @Description Stores the validated destination address for a user, currency and network
// @id setWithdrawalAddress
// @Tags Crypto
// @Accept json
// @Produce json
// @Param request body WithdrawalAddressRequest true "Withdrawal address parameters"
// @Success 200 {object} view.MessageResponse
// @Failure 400 {object} view.ErrorResponse
// @Failure 500 {object} view.ErrorResponse
// @Router /crypto/withdrawal-address [put]
func (h *handler) SetWithdrawalAddress(c *gin.Context) {
	var req WithdrawalAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("[SetWithdrawalAddress][ShouldBindJSON]", map[string]string{
			"error": err.Error(),
		})
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, req, "invalid request"))
		return
	}

	if err := h.gateway.SetWithdrawalAddress(req.UserID, req.Currency, req.Network, req.Address); err != nil {
		h.respondError(c, "SetWithdrawalAddress", err)
		return
	}

	c.JSON(http.StatusOK, view.CreateResponse[any]("withdrawal address saved", nil, nil, ""))
}

// ListPending godoc
// @Summary List pending transactions
// @Description Lists a user's transactions that have not reached a terminal state
// @id listPendingTransactions
// @Tags Crypto
// @Produce json
// @Param user_id query int true "User id"
// @Success 200 {object} view.MessageResponse
// @Failure 400 {object} view.ErrorResponse
// @Router /crypto/pending [get]
func (h *handler) ListPending(c *gin.Context) {
	var q PendingQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, q, "invalid request"))
		return
	}

	c.JSON(http.StatusOK, view.CreateResponse(h.gateway.PendingForUser(q.UserID), nil, nil, ""))
}

// GetNetworkFees godoc
// @Summary Network fee lookup
// @Description Returns the provider's current fee per currency on one network
// @id getNetworkFees
// @Tags Crypto
// @Produce json
// @Param network path string true "Network name"
// @Success 200 {object} view.MessageResponse
// @Failure 400 {object} view.ErrorResponse
// @Failure 500 {object} view.ErrorResponse
// @Router /crypto/network-fees/{network} [get]
func (h *handler) GetNetworkFees(c *gin.Context) {
	fees, err := h.gateway.NetworkFees(c.Param("network"))
	if err != nil {
		h.respondError(c, "GetNetworkFees", err)
		return
	}

	c.JSON(http.StatusOK, view.CreateResponse(fees, nil, nil, ""))
}

func (h *handler) respondError(c *gin.Context, op string, err error) {
	h.logger.Error("["+op+"] request failed", map[string]string{
		"error": err.Error(),
	})

	switch {
	case errs.IsValidation(err), errs.IsInsufficientBalance(err):
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, nil, "invalid request"))
	case errs.IsConflict(err):
		c.JSON(http.StatusConflict, view.CreateResponse[any](nil, err, nil, "conflicting request"))
	case errs.IsProvider(err):
		c.JSON(http.StatusBadGateway, view.CreateResponse[any](nil, err, nil, "payment provider unavailable"))
	default:
		c.JSON(http.StatusInternalServerError, view.CreateResponse[any](nil, err, nil, "internal error"))
	}
}
