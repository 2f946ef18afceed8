package ledger

import (
	"net/http"

	types "order-ledger/internal/common/type"
	"order-ledger/internal/pkg/helper"
	ledgerService "order-ledger/internal/service/ledger"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	ledgerService ledgerService.IService
}

type IHandler interface {
	NewRoutes(e *gin.RouterGroup)
}

func NewHandler(ledgerService ledgerService.IService) IHandler {
	return &Handler{
		ledgerService: ledgerService,
	}
}

// SubmitOrder godoc
// @Summary      Record an order
// @Description  Appends items to the customer's block, creating the block at the end of the sheet when missing
// @Tags         Orders
// @Accept       json
// @Produce      json
// @Param        request  body      ledgerService.SubmitOrderRequest  true  "Order"
// @Success      201      {object}  types.ResponseAPI{data=ledgerService.SubmitOrderResponse}
// @Failure      400      {object}  types.ResponseAPI
// @Failure      409      {object}  types.ResponseAPI
// @Router       /v1/orders [post]
func (h *Handler) SubmitOrder(c *gin.Context) {
	send := c.MustGet("send").(func(r *types.Response))

	var req ledgerService.SubmitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		send(helper.ParseResponse(&types.Response{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
			Error:   err,
		}))
		return
	}

	send(h.ledgerService.SubmitOrder(c.Request.Context(), &req))
}

// ParseOrder godoc
// @Summary      Parse free-text items
// @Tags         Orders
// @Accept       json
// @Produce      json
// @Param        request  body      ledgerService.ParseOrderRequest  true  "Order text"
// @Success      200      {object}  types.ResponseAPI{data=ledgerService.ParseOrderResponse}
// @Failure      400      {object}  types.ResponseAPI
// @Router       /v1/orders/parse [post]
func (h *Handler) ParseOrder(c *gin.Context) {
	send := c.MustGet("send").(func(r *types.Response))

	var req ledgerService.ParseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		send(helper.ParseResponse(&types.Response{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
			Error:   err,
		}))
		return
	}

	send(h.ledgerService.ParseOrder(c.Request.Context(), &req))
}

// ListBlocks godoc
// @Summary      Reconstruct customer blocks
// @Tags         Ledger
// @Produce      json
// @Param        sheet  path      string  true  "Sheet name"
// @Success      200    {object}  types.ResponseAPI{data=[]ledger.Block}
// @Failure      404    {object}  types.ResponseAPI
// @Router       /v1/ledger/{sheet}/blocks [get]
func (h *Handler) ListBlocks(c *gin.Context) {
	send := c.MustGet("send").(func(r *types.Response))

	send(h.ledgerService.ListBlocks(c.Request.Context(), c.Param("sheet")))
}

// GetCustomerItems godoc
// @Summary      First block of a customer with its items
// @Tags         Ledger
// @Produce      json
// @Param        sheet  path      string  true  "Sheet name"
// @Param        name   path      string  true  "Customer name"
// @Success      200    {object}  types.ResponseAPI{data=ledgerService.CustomerItemsResponse}
// @Failure      404    {object}  types.ResponseAPI
// @Router       /v1/ledger/{sheet}/blocks/{name} [get]
func (h *Handler) GetCustomerItems(c *gin.Context) {
	send := c.MustGet("send").(func(r *types.Response))

	send(h.ledgerService.GetCustomerItems(c.Request.Context(), c.Param("sheet"), c.Param("name")))
}

// ListDuplicates godoc
// @Summary      Customer names owning more than one block
// @Tags         Ledger
// @Produce      json
// @Param        sheet  path      string  true  "Sheet name"
// @Success      200    {object}  types.ResponseAPI{data=ledgerService.DuplicatesResponse}
// @Router       /v1/ledger/{sheet}/duplicates [get]
func (h *Handler) ListDuplicates(c *gin.Context) {
	send := c.MustGet("send").(func(r *types.Response))

	send(h.ledgerService.ListDuplicates(c.Request.Context(), c.Param("sheet")))
}
