// internal/interfaces/http/handlers/response_test.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/checkout"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/payment"
	"github.com/your-org/storefront-backend/internal/domain/stock"
)

func TestRespondDomainError_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"empty cart", checkout.ErrEmptyCart, http.StatusBadRequest},
		{"product unavailable", checkout.ErrProductUnavailable, http.StatusConflict},
		{"idempotency key in flight", checkout.ErrRequestInFlight, http.StatusConflict},
		{"insufficient stock", &stock.InsufficientStockError{Lines: []stock.InsufficientLine{
			{ProductID: 10, UnitIndex: 0, Requested: 3},
		}}, http.StatusConflict},
		{"unit not found", stock.ErrUnitNotFound, http.StatusNotFound},
		{"signature mismatch", payment.ErrSignatureMismatch, http.StatusBadRequest},
		{"missing payment reference", payment.ErrMissingReference, http.StatusBadRequest},
		{"unknown payment method", payment.ErrUnknownMethod, http.StatusBadRequest},
		{"cart item not found", cart.ErrItemNotFound, http.StatusNotFound},
		{"duplicate cart item", cart.ErrDuplicateItem, http.StatusConflict},
		{"invalid quantity", cart.ErrInvalidQuantity, http.StatusBadRequest},
		{"order not found", order.ErrOrderNotFound, http.StatusNotFound},
		{"invalid status transition", order.ErrInvalidTransition, http.StatusConflict},
		{"not cancellable", order.ErrNotCancellable, http.StatusConflict},
		{"unknown error is opaque", errors.New("pq: connection refused"), http.StatusInternalServerError},
		{"wrapped error still maps", fmt.Errorf("checkout: %w", checkout.ErrEmptyCart), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondDomainError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), `"success":false`)
		})
	}
}

func TestRespondDomainError_UnknownErrorsDoNotLeakDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondDomainError(c, errors.New("dial tcp 10.0.0.5:5432: i/o timeout"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
	assert.Contains(t, w.Body.String(), "internal server error")
}
