// internal/interfaces/http/handlers/payment.go
package handlers

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/checkout"
	"github.com/your-org/storefront-backend/internal/domain/payment"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// PaymentHandler serves payment initiation and gateway callbacks
type PaymentHandler struct {
	config   *config.Config
	gateway  *payment.RazorpayClient
	checkout *checkout.Service
	logger   *logrus.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(cfg *config.Config, gateway *payment.RazorpayClient, checkoutService *checkout.Service, logger *logrus.Logger) *PaymentHandler {
	return &PaymentHandler{
		config:   cfg,
		gateway:  gateway,
		checkout: checkoutService,
		logger:   logger,
	}
}

// GetMethods handles GET /payment/methods
func (h *PaymentHandler) GetMethods(c *gin.Context) {
	respond(c, http.StatusOK, gin.H{
		"methods": []gin.H{
			{"id": payment.MethodOnline, "name": "Pay Online", "enabled": h.config.External.Razorpay.KeyID != ""},
			{"id": payment.MethodCOD, "name": "Cash on Delivery", "enabled": true},
		},
		"currency": h.config.Checkout.Currency,
	})
}

// InitiatePayment handles POST /payment/initiate. It registers a gateway
// order for the caller's current cart total; the client pays against it
// and then calls checkout with the proof.
func (h *PaymentHandler) InitiatePayment(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authorization required")
		return
	}

	// Price the cart the same way checkout will so the amount paid matches
	// the order total, not the cart's add-time snapshots.
	amount, err := h.checkout.Quote(c.Request.Context(), userID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	receipt := fmt.Sprintf("cart-%d-%d", userID, time.Now().Unix())
	gatewayOrder, err := h.gateway.CreateOrder(c.Request.Context(), amount, h.config.Checkout.Currency, receipt)
	if err != nil {
		h.logger.WithError(err).Error("Failed to create gateway order")
		respondError(c, http.StatusBadGateway, "payment gateway unavailable")
		return
	}

	respond(c, http.StatusOK, gatewayOrder)
}

// Webhook handles POST /payment/webhook. Events are acknowledged after
// signature validation; order state is driven by the checkout flow, so the
// webhook is an audit record.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondError(c, http.StatusBadRequest, "unreadable body")
		return
	}

	signature := c.GetHeader("X-Razorpay-Signature")
	if err := h.gateway.VerifyWebhookSignature(body, signature); err != nil {
		h.logger.WithError(err).Warn("Rejected webhook with bad signature")
		respondError(c, http.StatusUnauthorized, "invalid webhook signature")
		return
	}

	h.logger.WithField("bytes", len(body)).Info("Payment webhook received")
	respond(c, http.StatusOK, gin.H{"received": true})
}
