package middleware

import (
	types "order-ledger/internal/common/type"
	"order-ledger/internal/pkg/helper"

	"github.com/gin-gonic/gin"
)

// ResponseInit installs the "send" writer handlers use to reply with a
// service response.
func ResponseInit() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("send", func(r *types.Response) {
			r = helper.ParseResponse(r)
			c.AbortWithStatusJSON(r.Code, helper.ToAPIResponse(r))
		})
		c.Next()
	}
}
