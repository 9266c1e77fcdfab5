// internal/interfaces/http/handlers/order.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// OrderHandler serves order history and lifecycle endpoints
type OrderHandler struct {
	orders *order.Service
	logger *logrus.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders *order.Service, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		logger: logger,
	}
}

// UpdateStatusRequest is the admin status change body
type UpdateStatusRequest struct {
	Status order.Status `json:"status" binding:"required"`
}

// ListOrders handles GET /orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authorization required")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	resp, err := h.orders.ListByUser(c.Request.Context(), userID, page, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list orders")
		respondError(c, http.StatusInternalServerError, "failed to retrieve orders")
		return
	}

	respond(c, http.StatusOK, resp)
}

// GetOrder handles GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authorization required")
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid order id")
		return
	}

	o, err := h.orders.GetByID(c.Request.Context(), uint(orderID), userID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	respond(c, http.StatusOK, o)
}

// CancelOrder handles PUT /orders/:id/cancel
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authorization required")
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid order id")
		return
	}

	o, err := h.orders.Cancel(c.Request.Context(), uint(orderID), userID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	respond(c, http.StatusOK, o)
}

// UpdateStatus handles PUT /admin/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid order id")
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.orders.UpdateStatus(c.Request.Context(), uint(orderID), req.Status)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	respond(c, http.StatusOK, o)
}
