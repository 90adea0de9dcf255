package crypto

import "github.com/gin-gonic/gin"

type IHandler interface {
	GenerateDepositAddress(c *gin.Context)
	InitiateWithdrawal(c *gin.Context)
	SetWithdrawalAddress(c *gin.Context)
	ListPending(c *gin.Context)
	GetNetworkFees(c *gin.Context)
}
