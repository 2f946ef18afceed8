package ledger

import (
	"github.com/gin-gonic/gin"
)

func (h *Handler) NewRoutes(e *gin.RouterGroup) {
	orders := e.Group("/v1/orders")
	orders.POST("", h.SubmitOrder)
	orders.POST("/parse", h.ParseOrder)

	sheets := e.Group("/v1/ledger/:sheet")
	sheets.GET("/blocks", h.ListBlocks)
	sheets.GET("/blocks/:name", h.GetCustomerItems)
	sheets.GET("/duplicates", h.ListDuplicates)
}
