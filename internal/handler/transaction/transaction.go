package transaction

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pixelslots/crypto-backend/internal/model"
	"github.com/pixelslots/crypto-backend/internal/pendingstore"
	"github.com/pixelslots/crypto-backend/internal/store/processedtransaction"
	"github.com/pixelslots/crypto-backend/internal/view"
)

type GetTransactionsRequest struct {
	UserID int64 `form:"user_id" binding:"required"`
	Limit  int   `form:"limit"`
}

// TransactionList pairs the live pending entries with the settled ledger
// records for one user.
type TransactionList struct {
	Pending []*model.Transaction         `json:"pending"`
	Settled []model.ProcessedTransaction `json:"settled"`
}

type handler struct {
	db      *gorm.DB
	settled processedtransaction.IStore
	pending pendingstore.IStore
}

func New(db *gorm.DB, settled processedtransaction.IStore, pending pendingstore.IStore) IHandler {
	return &handler{
		db:      db,
		settled: settled,
		pending: pending,
	}
}

// GetTransactions godoc
// @Summary List transactions
// @Description Lists a user's pending and settled transactions
// @id getTransactions
// @Tags Transaction
// @Produce json
// @Param user_id query int true "User id"
// @Param limit query int false "Max settled records, default 20"
// @Success 200 {object} view.MessageResponse
// @Failure 400 {object} view.ErrorResponse
// @Router /transactions [get]
func (h *handler) GetTransactions(c *gin.Context) {
	var req GetTransactionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, req, "invalid request"))
		return
	}

	if req.Limit <= 0 {
		req.Limit = 20
	}
	if req.Limit > 100 {
		req.Limit = 100
	}

	settled, err := h.settled.ListByUser(h.db, req.UserID, req.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, view.CreateResponse[any](nil, err, nil, "failed to fetch transactions"))
		return
	}

	c.JSON(http.StatusOK, view.CreateResponse(&TransactionList{
		Pending: h.pending.ListByUser(req.UserID),
		Settled: settled,
	}, nil, nil, ""))
}

// GetTransaction godoc
// @Summary Transaction detail
// @Description Returns one transaction by provider id, live or settled
// @id getTransaction
// @Tags Transaction
// @Produce json
// @Param id path string true "Transaction id"
// @Success 200 {object} view.MessageResponse
// @Failure 404 {object} view.ErrorResponse
// @Router /transactions/{id} [get]
func (h *handler) GetTransaction(c *gin.Context) {
	id := c.Param("id")

	if tx, ok := h.pending.Get(id); ok {
		c.JSON(http.StatusOK, view.CreateResponse(tx, nil, nil, ""))
		return
	}

	settled, err := h.settled.GetByTxID(h.db, id)
	if err != nil {
		c.JSON(http.StatusNotFound, view.CreateResponse[any](nil, err, nil, "transaction not found"))
		return
	}

	c.JSON(http.StatusOK, view.CreateResponse(settled, nil, nil, ""))
}
