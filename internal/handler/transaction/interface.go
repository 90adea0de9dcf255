package transaction

import "github.com/gin-gonic/gin"

type IHandler interface {
	GetTransactions(c *gin.Context)
	GetTransaction(c *gin.Context)
}
