// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// CartHandler serves the authenticated user's cart
type CartHandler struct {
	carts    *cart.Store
	products *product.Service
	logger   *logrus.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts *cart.Store, products *product.Service, logger *logrus.Logger) *CartHandler {
	return &CartHandler{
		carts:    carts,
		products: products,
		logger:   logger,
	}
}

// AddItemRequest is the add-to-cart body. The item is identified by its
// product and positional unit index; prices come from the catalog.
type AddItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	UnitIndex *int `json:"unit_index" binding:"required,min=0"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// UpdateItemRequest is the set-quantity body
type UpdateItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authorization required")
		return
	}

	userCart, err := h.carts.Get(c.Request.Context(), userID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load cart")
		respondError(c, http.StatusInternalServerError, "failed to load cart")
		return
	}

	respond(c, http.StatusOK, gin.H{
		"cart":       userCart,
		"subtotal":   userCart.Subtotal(),
		"item_count": userCart.ItemCount(),
	})
}

// AddItem handles POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authorization required")
		return
	}

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	// Validate against the live catalog and snapshot display fields.
	prod, err := h.products.GetProduct(req.ProductID)
	if err != nil {
		respondError(c, http.StatusNotFound, "product not found")
		return
	}
	if !prod.IsActive {
		respondError(c, http.StatusConflict, "product is not available")
		return
	}

	unit := prod.UnitAt(*req.UnitIndex)
	if unit == nil {
		respondError(c, http.StatusNotFound, "product unit not found")
		return
	}
	if !unit.IsInStock() {
		respondError(c, http.StatusConflict, "product unit is out of stock")
		return
	}

	userCart, err := h.carts.AddItem(c.Request.Context(), userID, cart.Item{
		ProductID:   prod.ID,
		UnitIndex:   unit.UnitIndex,
		ProductName: prod.Name,
		Image:       prod.Image,
		Unit:        unit.Unit,
		Price:       unit.EffectivePrice(),
		Quantity:    req.Quantity,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	respond(c, http.StatusOK, gin.H{
		"cart":       userCart,
		"subtotal":   userCart.Subtotal(),
		"item_count": userCart.ItemCount(),
	})
}

// UpdateItem handles PUT /cart/items/:productId/:unitIndex
func (h *CartHandler) UpdateItem(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authorization required")
		return
	}

	productID, unitIndex, ok := parseItemParams(c)
	if !ok {
		return
	}

	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	userCart, err := h.carts.UpdateQuantity(c.Request.Context(), userID, productID, unitIndex, req.Quantity)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	respond(c, http.StatusOK, gin.H{
		"cart":       userCart,
		"subtotal":   userCart.Subtotal(),
		"item_count": userCart.ItemCount(),
	})
}

// RemoveItem handles DELETE /cart/items/:productId/:unitIndex
func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authorization required")
		return
	}

	productID, unitIndex, ok := parseItemParams(c)
	if !ok {
		return
	}

	userCart, err := h.carts.RemoveItem(c.Request.Context(), userID, productID, unitIndex)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	respond(c, http.StatusOK, gin.H{
		"cart":       userCart,
		"subtotal":   userCart.Subtotal(),
		"item_count": userCart.ItemCount(),
	})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authorization required")
		return
	}

	if err := h.carts.Clear(c.Request.Context(), userID); err != nil {
		h.logger.WithError(err).Error("Failed to clear cart")
		respondError(c, http.StatusInternalServerError, "failed to clear cart")
		return
	}

	respond(c, http.StatusOK, gin.H{"message": "cart cleared"})
}

func parseItemParams(c *gin.Context) (uint, int, bool) {
	productID, err := strconv.ParseUint(c.Param("productId"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid product id")
		return 0, 0, false
	}
	unitIndex, err := strconv.Atoi(c.Param("unitIndex"))
	if err != nil || unitIndex < 0 {
		respondError(c, http.StatusBadRequest, "invalid unit index")
		return 0, 0, false
	}
	return uint(productID), unitIndex, true
}
