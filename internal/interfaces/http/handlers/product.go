// internal/interfaces/http/handlers/product.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/stock"
)

// ProductHandler serves the catalog and admin product management
type ProductHandler struct {
	products *product.Service
	stock    *stock.Ledger
	logger   *logrus.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(products *product.Service, stockLedger *stock.Ledger, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{
		products: products,
		stock:    stockLedger,
		logger:   logger,
	}
}

// GetProducts handles GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	var req product.ProductListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid query parameters")
		return
	}

	resp, err := h.products.GetProducts(&req)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list products")
		respondError(c, http.StatusInternalServerError, "failed to retrieve products")
		return
	}

	respond(c, http.StatusOK, resp)
}

// GetProduct handles GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid product id")
		return
	}

	prod, err := h.products.GetProduct(uint(id))
	if err != nil {
		respondError(c, http.StatusNotFound, "product not found")
		return
	}

	respond(c, http.StatusOK, prod)
}

// CreateProduct handles POST /admin/products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req product.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	prod, err := h.products.CreateProduct(&req)
	if err != nil {
		respondError(c, http.StatusConflict, err.Error())
		return
	}

	respond(c, http.StatusCreated, prod)
}

// UpdateProduct handles PUT /admin/products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid product id")
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	prod, err := h.products.UpdateProduct(uint(id), updates)
	if err != nil {
		respondError(c, http.StatusNotFound, "product not found")
		return
	}

	respond(c, http.StatusOK, prod)
}

// DeleteProduct handles DELETE /admin/products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.products.DeleteProduct(uint(id)); err != nil {
		respondError(c, http.StatusNotFound, "product not found")
		return
	}

	respond(c, http.StatusOK, gin.H{"message": "product deleted"})
}

// SetStockRequest is the admin stock correction body
type SetStockRequest struct {
	Stock int `json:"stock" binding:"min=0"`
}

// SetUnitStock handles PUT /admin/products/:id/units/:index/stock
func (h *ProductHandler) SetUnitStock(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid product id")
		return
	}
	unitIndex, err := strconv.Atoi(c.Param("index"))
	if err != nil || unitIndex < 0 {
		respondError(c, http.StatusBadRequest, "invalid unit index")
		return
	}

	var req SetStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.stock.SetStock(c.Request.Context(), uint(productID), unitIndex, req.Stock); err != nil {
		respondDomainError(c, err)
		return
	}

	respond(c, http.StatusOK, gin.H{
		"product_id": productID,
		"unit_index": unitIndex,
		"stock":      req.Stock,
	})
}
