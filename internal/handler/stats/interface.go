package stats

import "github.com/gin-gonic/gin"

type IHandler interface {
	GetStats(c *gin.Context)
}
