// internal/handlers/order.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/agrilink/agrilink-backend/internal/i18n"
	"github.com/agrilink/agrilink-backend/internal/services"
	"github.com/agrilink/agrilink-backend/internal/utils"
)

type OrderHandler struct {
	orderService    *services.OrderService
	checkoutService *services.CheckoutService
	authService     *services.AuthService
}

func NewOrderHandler(
	orderService *services.OrderService,
	checkoutService *services.CheckoutService,
	authService *services.AuthService,
) *OrderHandler {
	return &OrderHandler{
		orderService:    orderService,
		checkoutService: checkoutService,
		authService:     authService,
	}
}

// Checkout submits the buyer's cart. Stock for every line is reserved
// atomically; a single shortage rejects the entire submission.
func (h *OrderHandler) Checkout(c *gin.Context) {
	actor, ok := loadActor(c, h.authService)
	if !ok {
		return
	}

	var req services.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", nil)
		return
	}

	orders, err := h.checkoutService.Checkout(actor, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	lang := utils.GetLangFromContext(c)
	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyOrderPlaced),
		"orders":  orders,
	})
}

// List shows the caller's orders: purchases for buyers, sales for
// farmers.
func (h *OrderHandler) List(c *gin.Context) {
	actor, ok := loadActor(c, h.authService)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	filters := services.OrderFilters{Status: c.Query("status")}

	orders, total, err := h.orderService.ListForActor(actor, filters, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(orders, total, params))
}

func (h *OrderHandler) Get(c *gin.Context) {
	actor, ok := loadActor(c, h.authService)
	if !ok {
		return
	}

	id, ok := pathID(c)
	if !ok {
		return
	}

	order, err := h.orderService.GetByID(actor, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, order)
}

// Cancel withdraws a pending order and returns its stock.
func (h *OrderHandler) Cancel(c *gin.Context) {
	actor, ok := loadActor(c, h.authService)
	if !ok {
		return
	}

	id, ok := pathID(c)
	if !ok {
		return
	}

	order, err := h.orderService.Cancel(actor, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	lang := utils.GetLangFromContext(c)
	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyOrderCancelled),
		"order":   order,
	})
}

// UpdateStatus moves an order along its lifecycle (farmer or admin).
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	actor, ok := loadActor(c, h.authService)
	if !ok {
		return
	}

	id, ok := pathID(c)
	if !ok {
		return
	}

	var req services.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", nil)
		return
	}

	order, err := h.orderService.UpdateStatus(actor, id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	lang := utils.GetLangFromContext(c)
	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyOrderStatusUpdated),
		"order":   order,
	})
}

func (h *OrderHandler) Stats(c *gin.Context) {
	actor, ok := loadActor(c, h.authService)
	if !ok {
		return
	}

	stats, err := h.orderService.Stats(actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, stats)
}
