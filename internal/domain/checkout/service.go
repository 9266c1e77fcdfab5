// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/payment"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/stock"
)

// Sentinel errors for checkout
var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrProductUnavailable = errors.New("product no longer available")
	ErrRequestInFlight    = errors.New("checkout with this idempotency key is already in progress")
)

// CartStore is the slice of the cart store checkout needs
type CartStore interface {
	Get(ctx context.Context, userID uint) (*cart.Cart, error)
	Clear(ctx context.Context, userID uint) error
}

// Catalog resolves cart lines against current products
type Catalog interface {
	GetProduct(id uint) (*product.Product, error)
}

// StockLedger reserves and releases unit stock
type StockLedger interface {
	CheckAvailable(ctx context.Context, lines []stock.Line) error
	Decrement(ctx context.Context, lines []stock.Line) ([]stock.Line, error)
	Increment(ctx context.Context, lines []stock.Line) error
}

// OrderLedger persists placed orders
type OrderLedger interface {
	Create(ctx context.Context, o *order.Order) (*order.Order, error)
	GetByID(ctx context.Context, orderID uint, userID uint) (*order.Order, error)
}

// Request is a checkout attempt for the caller's server-side cart. The
// cart itself is never taken from the request body.
type Request struct {
	UserID         uint
	Proof          payment.Proof
	Address        order.Address
	IdempotencyKey string
}

// Service orchestrates order placement: verify payment, reserve stock,
// persist the order, clear the cart. Stock reservation is the commit
// point; everything after it either succeeds or compensates.
type Service struct {
	config      *config.Config
	carts       CartStore
	catalog     Catalog
	stock       StockLedger
	orders      OrderLedger
	verifier    payment.Verifier
	idempotency IdempotencyStore
	logger      *logrus.Logger
}

// NewService creates a new checkout service
func NewService(
	cfg *config.Config,
	carts CartStore,
	catalog Catalog,
	stockLedger StockLedger,
	orders OrderLedger,
	verifier payment.Verifier,
	idempotency IdempotencyStore,
	logger *logrus.Logger,
) *Service {
	return &Service{
		config:      cfg,
		carts:       carts,
		catalog:     catalog,
		stock:       stockLedger,
		orders:      orders,
		verifier:    verifier,
		idempotency: idempotency,
		logger:      logger,
	}
}

// PlaceOrder runs the checkout pipeline and returns the created order.
func (s *Service) PlaceOrder(ctx context.Context, req Request) (*order.Order, error) {
	log := s.logger.WithFields(logrus.Fields{
		"user_id": req.UserID,
		"method":  req.Proof.Method,
	})

	// A retried request with the same key returns the original order.
	reserved := false
	if req.IdempotencyKey != "" {
		ok, existingID, err := s.idempotency.Reserve(ctx, req.UserID, req.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if !ok {
			if existingID == 0 {
				return nil, ErrRequestInFlight
			}
			log.WithField("order_id", existingID).Info("Idempotent checkout replay")
			return s.orders.GetByID(ctx, existingID, req.UserID)
		}
		reserved = true
	}

	o, err := s.placeOrder(ctx, req, log)
	if err != nil {
		if reserved {
			if relErr := s.idempotency.Release(ctx, req.UserID, req.IdempotencyKey); relErr != nil {
				log.WithError(relErr).Warn("Failed to release idempotency key after failed checkout")
			}
		}
		return nil, err
	}

	if reserved {
		if err := s.idempotency.Complete(ctx, req.UserID, req.IdempotencyKey, o.ID); err != nil {
			// The order exists; a failed record only costs replay detection.
			log.WithError(err).Warn("Failed to record idempotency result")
		}
	}

	return o, nil
}

// Quote prices the user's current cart exactly the way PlaceOrder will:
// lines repriced from the live catalog, shipping and tax included. Used to
// size the gateway order so the amount paid matches the order total.
func (s *Service) Quote(ctx context.Context, userID uint) (int64, error) {
	c, err := s.carts.Get(ctx, userID)
	if err != nil {
		return 0, err
	}
	if c.IsEmpty() {
		return 0, ErrEmptyCart
	}

	items, _, err := s.buildOrderItems(c)
	if err != nil {
		return 0, err
	}

	_, _, _, total := s.computeTotals(items)
	return total, nil
}

func (s *Service) placeOrder(ctx context.Context, req Request, log *logrus.Entry) (*order.Order, error) {
	// Verify payment before touching stock. A forged proof must never
	// reserve inventory.
	if err := s.verifier.Verify(req.Proof); err != nil {
		log.WithError(err).Warn("Payment verification failed")
		return nil, err
	}

	// The server-side cart is the only source of what is being bought.
	c, err := s.carts.Get(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	// Rebuild every line from the live catalog: current prices, current
	// unit definitions. Cart snapshots are display-only.
	items, lines, err := s.buildOrderItems(c)
	if err != nil {
		return nil, err
	}

	// Advisory gate: fail fast with a precise line before committing.
	if err := s.stock.CheckAvailable(ctx, lines); err != nil {
		return nil, err
	}

	// Commit point. Partially applied decrements are rolled back.
	applied, err := s.stock.Decrement(ctx, lines)
	if err != nil {
		s.compensate(ctx, applied, log)
		return nil, err
	}

	subtotal, shipping, tax, total := s.computeTotals(items)

	// Online orders are created paid: the proof was verified above. COD
	// settles on delivery.
	paymentStatus := order.PaymentPending
	if req.Proof.Method == payment.MethodOnline {
		paymentStatus = order.PaymentPaid
	}

	o := &order.Order{
		UserID:   req.UserID,
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    total,
		Currency: s.config.Checkout.Currency,
		Payment: order.PaymentDetails{
			Method:     req.Proof.Method,
			Status:     paymentStatus,
			OrderRef:   req.Proof.OrderRef,
			PaymentRef: req.Proof.PaymentRef,
		},
		Address: req.Address,
		Items:   items,
	}

	created, err := s.orders.Create(ctx, o)
	if err != nil {
		// Stock was reserved for an order that never materialized.
		s.compensate(ctx, applied, log)
		return nil, err
	}

	// Best effort: a leftover cart is a nuisance, not a correctness issue.
	if err := s.carts.Clear(ctx, req.UserID); err != nil {
		log.WithError(err).WithField("order_id", created.ID).
			Warn("Failed to clear cart after checkout")
	}

	log.WithFields(logrus.Fields{
		"order_id":     created.ID,
		"order_number": created.OrderNumber,
		"total":        created.Total,
	}).Info("Checkout completed")

	return created, nil
}

// buildOrderItems turns cart lines into order item snapshots priced from
// the live catalog.
func (s *Service) buildOrderItems(c *cart.Cart) ([]order.OrderItem, []stock.Line, error) {
	items := make([]order.OrderItem, 0, len(c.Items))
	lines := make([]stock.Line, 0, len(c.Items))

	for _, ci := range c.Items {
		if ci.Quantity <= 0 {
			return nil, nil, cart.ErrInvalidQuantity
		}

		prod, err := s.catalog.GetProduct(ci.ProductID)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: product %d", ErrProductUnavailable, ci.ProductID)
		}
		if !prod.IsActive {
			return nil, nil, fmt.Errorf("%w: %s", ErrProductUnavailable, prod.Name)
		}

		unit := prod.UnitAt(ci.UnitIndex)
		if unit == nil {
			return nil, nil, fmt.Errorf("%w: %s unit %d", ErrProductUnavailable, prod.Name, ci.UnitIndex)
		}

		price := unit.EffectivePrice()
		items = append(items, order.OrderItem{
			ProductID:   prod.ID,
			UnitIndex:   unit.UnitIndex,
			ProductName: prod.Name,
			Image:       prod.Image,
			Unit:        unit.Unit,
			UnitPrice:   price,
			Quantity:    ci.Quantity,
			LineTotal:   price * int64(ci.Quantity),
		})
		lines = append(lines, stock.Line{
			ProductID: prod.ID,
			UnitIndex: unit.UnitIndex,
			Quantity:  ci.Quantity,
		})
	}

	return items, lines, nil
}

// computeTotals derives all money fields server side
func (s *Service) computeTotals(items []order.OrderItem) (subtotal, shipping, tax, total int64) {
	for _, item := range items {
		subtotal += item.LineTotal
	}

	shipping = s.config.Checkout.ShippingFlatRate
	if s.config.Checkout.FreeShippingAbove > 0 && subtotal >= s.config.Checkout.FreeShippingAbove {
		shipping = 0
	}

	if rate := s.config.Checkout.TaxRatePercent; rate > 0 {
		tax = int64(math.Round(float64(subtotal) * rate / 100))
	}

	total = subtotal + shipping + tax
	return
}

// compensate returns already-decremented stock after a failed checkout
func (s *Service) compensate(ctx context.Context, applied []stock.Line, log *logrus.Entry) {
	if len(applied) == 0 {
		return
	}
	if err := s.stock.Increment(ctx, applied); err != nil {
		log.WithError(err).WithField("lines", len(applied)).
			Error("Stock compensation failed; manual correction required")
	}
}
