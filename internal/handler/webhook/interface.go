package webhook

import "github.com/gin-gonic/gin"

type IHandler interface {
	Post(c *gin.Context)
}
