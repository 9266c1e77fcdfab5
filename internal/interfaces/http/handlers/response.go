// internal/interfaces/http/handlers/response.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/checkout"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/payment"
	"github.com/your-org/storefront-backend/internal/domain/stock"
)

// respond writes the standard success envelope
func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// respondError writes the standard error envelope
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error":   message,
	})
}

// respondDomainError maps domain errors onto HTTP statuses. Unknown errors
// become opaque 500s so internals never leak to clients.
func respondDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(c, http.StatusBadRequest, "cart is empty")
	case errors.Is(err, checkout.ErrProductUnavailable):
		respondError(c, http.StatusConflict, err.Error())
	case errors.Is(err, checkout.ErrRequestInFlight):
		respondError(c, http.StatusConflict, "a checkout with this idempotency key is already in progress")
	case errors.Is(err, stock.ErrInsufficientStock):
		respondError(c, http.StatusConflict, err.Error())
	case errors.Is(err, stock.ErrUnitNotFound):
		respondError(c, http.StatusNotFound, "product unit not found")
	case errors.Is(err, payment.ErrSignatureMismatch),
		errors.Is(err, payment.ErrMissingReference),
		errors.Is(err, payment.ErrUnknownMethod):
		respondError(c, http.StatusBadRequest, "payment verification failed")
	case errors.Is(err, cart.ErrItemNotFound):
		respondError(c, http.StatusNotFound, "cart item not found")
	case errors.Is(err, cart.ErrDuplicateItem):
		respondError(c, http.StatusConflict, "item already in cart; update its quantity instead")
	case errors.Is(err, cart.ErrInvalidQuantity), errors.Is(err, stock.ErrInvalidQuantity):
		respondError(c, http.StatusBadRequest, "quantity must be positive")
	case errors.Is(err, order.ErrOrderNotFound):
		respondError(c, http.StatusNotFound, "order not found")
	case errors.Is(err, order.ErrInvalidTransition):
		respondError(c, http.StatusConflict, err.Error())
	case errors.Is(err, order.ErrNotCancellable):
		respondError(c, http.StatusConflict, "order can no longer be cancelled")
	default:
		respondError(c, http.StatusInternalServerError, "internal server error")
	}
}
