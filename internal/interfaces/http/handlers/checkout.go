// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/checkout"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/payment"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// IdempotencyKeyHeader lets clients retry checkout safely
const IdempotencyKeyHeader = "X-Idempotency-Key"

// CheckoutHandler serves order placement
type CheckoutHandler struct {
	checkout *checkout.Service
	logger   *logrus.Logger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *checkout.Service, logger *logrus.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkoutService,
		logger:   logger,
	}
}

// AddressRequest is the delivery address body
type AddressRequest struct {
	Name       string `json:"name" binding:"required"`
	Phone      string `json:"phone" binding:"required"`
	Line1      string `json:"line1" binding:"required"`
	Line2      string `json:"line2"`
	City       string `json:"city" binding:"required"`
	State      string `json:"state" binding:"required"`
	PostalCode string `json:"postal_code" binding:"required"`
	Country    string `json:"country" binding:"required"`
}

// OnlineCheckoutRequest carries the gateway payment proof. The cart is
// read server side and never taken from the body.
type OnlineCheckoutRequest struct {
	OrderRef   string         `json:"order_ref" binding:"required"`
	PaymentRef string         `json:"payment_ref" binding:"required"`
	Signature  string         `json:"signature" binding:"required"`
	Address    AddressRequest `json:"address" binding:"required"`
}

// CODCheckoutRequest places a cash-on-delivery order
type CODCheckoutRequest struct {
	Address AddressRequest `json:"address" binding:"required"`
}

// CheckoutOnline handles POST /checkout/online
func (h *CheckoutHandler) CheckoutOnline(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authorization required")
		return
	}

	var req OnlineCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.checkout.PlaceOrder(c.Request.Context(), checkout.Request{
		UserID: userID,
		Proof: payment.Proof{
			Method:     payment.MethodOnline,
			OrderRef:   req.OrderRef,
			PaymentRef: req.PaymentRef,
			Signature:  req.Signature,
		},
		Address:        toAddress(req.Address),
		IdempotencyKey: c.GetHeader(IdempotencyKeyHeader),
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	respond(c, http.StatusCreated, o)
}

// CheckoutCOD handles POST /checkout/cod
func (h *CheckoutHandler) CheckoutCOD(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authorization required")
		return
	}

	var req CODCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.checkout.PlaceOrder(c.Request.Context(), checkout.Request{
		UserID:         userID,
		Proof:          payment.Proof{Method: payment.MethodCOD},
		Address:        toAddress(req.Address),
		IdempotencyKey: c.GetHeader(IdempotencyKeyHeader),
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	respond(c, http.StatusCreated, o)
}

func toAddress(a AddressRequest) order.Address {
	return order.Address{
		Name:       a.Name,
		Phone:      a.Phone,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}
