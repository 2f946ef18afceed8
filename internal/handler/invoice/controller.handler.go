package invoice

import (
	"net/http"

	types "order-ledger/internal/common/type"
	"order-ledger/internal/pkg/helper"
	invoiceService "order-ledger/internal/service/invoice"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	invoiceService invoiceService.IService
}

type IHandler interface {
	NewRoutes(e *gin.RouterGroup)
}

func NewHandler(invoiceService invoiceService.IService) IHandler {
	return &Handler{
		invoiceService: invoiceService,
	}
}

// CreateInvoice godoc
// @Summary      Create an invoice
// @Description  Bills the customer's ledger items, requests a payment link, stores the PDF and notifies the webhook
// @Tags         Invoices
// @Accept       json
// @Produce      json
// @Param        request  body      invoiceService.CreateInvoiceRequest  true  "Invoice request"
// @Success      201      {object}  types.ResponseAPI{data=invoiceService.CreateInvoiceResponse}
// @Failure      400      {object}  types.ResponseAPI
// @Failure      404      {object}  types.ResponseAPI
// @Router       /v1/invoices [post]
func (h *Handler) CreateInvoice(c *gin.Context) {
	send := c.MustGet("send").(func(r *types.Response))

	var req invoiceService.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		send(helper.ParseResponse(&types.Response{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
			Error:   err,
		}))
		return
	}

	send(h.invoiceService.CreateInvoice(c.Request.Context(), &req))
}
