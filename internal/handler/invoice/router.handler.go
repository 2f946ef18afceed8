package invoice

import (
	"github.com/gin-gonic/gin"
)

func (h *Handler) NewRoutes(e *gin.RouterGroup) {
	invoices := e.Group("/v1/invoices")
	invoices.POST("", h.CreateInvoice)
}
