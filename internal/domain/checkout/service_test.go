// internal/domain/checkout/service_test.go
package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/payment"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/stock"
)

type cartStoreMock struct {
	getFn   func(ctx context.Context, userID uint) (*cart.Cart, error)
	clearFn func(ctx context.Context, userID uint) error
}

func (m *cartStoreMock) Get(ctx context.Context, userID uint) (*cart.Cart, error) {
	return m.getFn(ctx, userID)
}
func (m *cartStoreMock) Clear(ctx context.Context, userID uint) error {
	if m.clearFn == nil {
		return nil
	}
	return m.clearFn(ctx, userID)
}

type catalogMock struct {
	getProductFn func(id uint) (*product.Product, error)
}

func (m *catalogMock) GetProduct(id uint) (*product.Product, error) {
	return m.getProductFn(id)
}

type stockMock struct {
	checkFn     func(ctx context.Context, lines []stock.Line) error
	decrementFn func(ctx context.Context, lines []stock.Line) ([]stock.Line, error)
	incrementFn func(ctx context.Context, lines []stock.Line) error
}

func (m *stockMock) CheckAvailable(ctx context.Context, lines []stock.Line) error {
	if m.checkFn == nil {
		return nil
	}
	return m.checkFn(ctx, lines)
}
func (m *stockMock) Decrement(ctx context.Context, lines []stock.Line) ([]stock.Line, error) {
	if m.decrementFn == nil {
		return lines, nil
	}
	return m.decrementFn(ctx, lines)
}
func (m *stockMock) Increment(ctx context.Context, lines []stock.Line) error {
	if m.incrementFn == nil {
		return nil
	}
	return m.incrementFn(ctx, lines)
}

type orderLedgerMock struct {
	createFn  func(ctx context.Context, o *order.Order) (*order.Order, error)
	getByIDFn func(ctx context.Context, orderID uint, userID uint) (*order.Order, error)
}

func (m *orderLedgerMock) Create(ctx context.Context, o *order.Order) (*order.Order, error) {
	return m.createFn(ctx, o)
}
func (m *orderLedgerMock) GetByID(ctx context.Context, orderID uint, userID uint) (*order.Order, error) {
	return m.getByIDFn(ctx, orderID, userID)
}

type verifierMock struct {
	verifyFn func(proof payment.Proof) error
}

func (m *verifierMock) Verify(proof payment.Proof) error {
	if m.verifyFn == nil {
		return nil
	}
	return m.verifyFn(proof)
}

type idemMock struct {
	reserveFn  func(ctx context.Context, userID uint, key string) (bool, uint, error)
	completeFn func(ctx context.Context, userID uint, key string, orderID uint) error
	releaseFn  func(ctx context.Context, userID uint, key string) error
}

func (m *idemMock) Reserve(ctx context.Context, userID uint, key string) (bool, uint, error) {
	if m.reserveFn == nil {
		return true, 0, nil
	}
	return m.reserveFn(ctx, userID, key)
}
func (m *idemMock) Complete(ctx context.Context, userID uint, key string, orderID uint) error {
	if m.completeFn == nil {
		return nil
	}
	return m.completeFn(ctx, userID, key, orderID)
}
func (m *idemMock) Release(ctx context.Context, userID uint, key string) error {
	if m.releaseFn == nil {
		return nil
	}
	return m.releaseFn(ctx, userID, key)
}

func testConfig() *config.Config {
	return &config.Config{
		Checkout: config.CheckoutConfig{
			Currency:          "INR",
			ShippingFlatRate:  4900,
			FreeShippingAbove: 99900,
			TaxRatePercent:    0,
		},
	}
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

// almondProduct has two units: 500g at 450.00 with 10% off, 1kg at 850.00.
func almondProduct() *product.Product {
	return &product.Product{
		ID:       10,
		Name:     "Almonds",
		IsActive: true,
		Units: []product.ProductUnit{
			{ProductID: 10, UnitIndex: 0, Unit: "500g", Price: 45000, Discount: 10, Stock: 20},
			{ProductID: 10, UnitIndex: 1, Unit: "1kg", Price: 85000, Stock: 5},
		},
	}
}

func twoItemCart() *cart.Cart {
	return &cart.Cart{
		UserID: 1,
		Items: []cart.Item{
			// Stale snapshot price; checkout must reprice from the catalog.
			{ProductID: 10, UnitIndex: 0, Price: 1, Quantity: 2},
			{ProductID: 10, UnitIndex: 1, Price: 1, Quantity: 1},
		},
	}
}

func newTestService(carts CartStore, catalog Catalog, st StockLedger, orders OrderLedger, v payment.Verifier, idem IdempotencyStore) *Service {
	return NewService(testConfig(), carts, catalog, st, orders, v, idem, testLogger())
}

func TestPlaceOrder_Success(t *testing.T) {
	var created *order.Order
	cartCleared := false

	carts := &cartStoreMock{
		getFn: func(ctx context.Context, userID uint) (*cart.Cart, error) {
			return twoItemCart(), nil
		},
		clearFn: func(ctx context.Context, userID uint) error {
			cartCleared = true
			return nil
		},
	}
	catalog := &catalogMock{getProductFn: func(id uint) (*product.Product, error) {
		return almondProduct(), nil
	}}
	orders := &orderLedgerMock{createFn: func(ctx context.Context, o *order.Order) (*order.Order, error) {
		// The ledger assigns the id and initial status on persist.
		o.ID = 77
		o.Status = order.StatusPending
		created = o
		return o, nil
	}}

	svc := newTestService(carts, catalog, &stockMock{}, orders, &verifierMock{}, &idemMock{})

	o, err := svc.PlaceOrder(context.Background(), Request{
		UserID: 1,
		Proof:  payment.Proof{Method: payment.MethodCOD},
	})
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, uint(77), o.ID)
	assert.Equal(t, order.StatusPending, o.Status)
	assert.Equal(t, payment.MethodCOD, o.Payment.Method)
	assert.Equal(t, order.PaymentPending, o.Payment.Status, "COD settles on delivery")
	assert.True(t, cartCleared)

	// 2 x 40500 (450.00 less 10%) + 1 x 85000, priced from the catalog,
	// ignoring the cart's snapshot prices.
	assert.Equal(t, int64(166000), o.Subtotal)
	assert.Equal(t, int64(0), o.Shipping, "subtotal above free shipping threshold")
	assert.Equal(t, int64(166000), o.Total)
	assert.Equal(t, "INR", o.Currency)
	require.Len(t, o.Items, 2)
	assert.Equal(t, int64(40500), o.Items[0].UnitPrice)
	assert.Equal(t, int64(81000), o.Items[0].LineTotal)
}

func TestPlaceOrder_OnlinePaymentRecordedAsPaid(t *testing.T) {
	carts := &cartStoreMock{getFn: func(ctx context.Context, userID uint) (*cart.Cart, error) {
		return twoItemCart(), nil
	}}
	catalog := &catalogMock{getProductFn: func(id uint) (*product.Product, error) {
		return almondProduct(), nil
	}}
	orders := &orderLedgerMock{createFn: func(ctx context.Context, o *order.Order) (*order.Order, error) {
		o.ID = 3
		return o, nil
	}}

	svc := newTestService(carts, catalog, &stockMock{}, orders, &verifierMock{}, &idemMock{})

	o, err := svc.PlaceOrder(context.Background(), Request{
		UserID: 1,
		Proof: payment.Proof{
			Method:     payment.MethodOnline,
			OrderRef:   "order_abc",
			PaymentRef: "pay_xyz",
			Signature:  "sig",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, order.PaymentPaid, o.Payment.Status)
	assert.Equal(t, "order_abc", o.Payment.OrderRef)
	assert.Equal(t, "pay_xyz", o.Payment.PaymentRef)
}

func TestPlaceOrder_ShippingBelowThreshold(t *testing.T) {
	carts := &cartStoreMock{getFn: func(ctx context.Context, userID uint) (*cart.Cart, error) {
		return &cart.Cart{UserID: 1, Items: []cart.Item{
			{ProductID: 10, UnitIndex: 0, Quantity: 1},
		}}, nil
	}}
	catalog := &catalogMock{getProductFn: func(id uint) (*product.Product, error) {
		return almondProduct(), nil
	}}
	orders := &orderLedgerMock{createFn: func(ctx context.Context, o *order.Order) (*order.Order, error) {
		o.ID = 1
		return o, nil
	}}

	svc := newTestService(carts, catalog, &stockMock{}, orders, &verifierMock{}, &idemMock{})

	o, err := svc.PlaceOrder(context.Background(), Request{
		UserID: 1,
		Proof:  payment.Proof{Method: payment.MethodCOD},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(40500), o.Subtotal)
	assert.Equal(t, int64(4900), o.Shipping)
	assert.Equal(t, int64(45400), o.Total)
}

func TestPlaceOrder_TaxApplied(t *testing.T) {
	cfg := testConfig()
	cfg.Checkout.TaxRatePercent = 5

	carts := &cartStoreMock{getFn: func(ctx context.Context, userID uint) (*cart.Cart, error) {
		return &cart.Cart{UserID: 1, Items: []cart.Item{
			{ProductID: 10, UnitIndex: 1, Quantity: 2},
		}}, nil
	}}
	catalog := &catalogMock{getProductFn: func(id uint) (*product.Product, error) {
		return almondProduct(), nil
	}}
	orders := &orderLedgerMock{createFn: func(ctx context.Context, o *order.Order) (*order.Order, error) {
		o.ID = 1
		return o, nil
	}}

	svc := NewService(cfg, carts, catalog, &stockMock{}, orders, &verifierMock{}, &idemMock{}, testLogger())

	o, err := svc.PlaceOrder(context.Background(), Request{
		UserID: 1,
		Proof:  payment.Proof{Method: payment.MethodCOD},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(170000), o.Subtotal)
	assert.Equal(t, int64(8500), o.Tax)
	assert.Equal(t, int64(178500), o.Total)
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	stockTouched := false

	carts := &cartStoreMock{getFn: func(ctx context.Context, userID uint) (*cart.Cart, error) {
		return &cart.Cart{UserID: 1, Items: []cart.Item{}}, nil
	}}
	st := &stockMock{decrementFn: func(ctx context.Context, lines []stock.Line) ([]stock.Line, error) {
		stockTouched = true
		return lines, nil
	}}

	svc := newTestService(carts, &catalogMock{}, st, &orderLedgerMock{}, &verifierMock{}, &idemMock{})

	_, err := svc.PlaceOrder(context.Background(), Request{
		UserID: 1,
		Proof:  payment.Proof{Method: payment.MethodCOD},
	})
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.False(t, stockTouched)
}

func TestPlaceOrder_PaymentRejectedBeforeStock(t *testing.T) {
	cartRead := false
	stockTouched := false

	carts := &cartStoreMock{getFn: func(ctx context.Context, userID uint) (*cart.Cart, error) {
		cartRead = true
		return twoItemCart(), nil
	}}
	st := &stockMock{decrementFn: func(ctx context.Context, lines []stock.Line) ([]stock.Line, error) {
		stockTouched = true
		return lines, nil
	}}
	v := &verifierMock{verifyFn: func(proof payment.Proof) error {
		return payment.ErrSignatureMismatch
	}}

	svc := newTestService(carts, &catalogMock{}, st, &orderLedgerMock{}, v, &idemMock{})

	_, err := svc.PlaceOrder(context.Background(), Request{
		UserID: 1,
		Proof:  payment.Proof{Method: payment.MethodOnline, OrderRef: "o", PaymentRef: "p", Signature: "bad"},
	})
	assert.ErrorIs(t, err, payment.ErrSignatureMismatch)
	assert.False(t, cartRead, "forged proof must be rejected before loading anything")
	assert.False(t, stockTouched)
}

func TestPlaceOrder_InactiveProduct(t *testing.T) {
	carts := &cartStoreMock{getFn: func(ctx context.Context, userID uint) (*cart.Cart, error) {
		return twoItemCart(), nil
	}}
	catalog := &catalogMock{getProductFn: func(id uint) (*product.Product, error) {
		p := almondProduct()
		p.IsActive = false
		return p, nil
	}}

	svc := newTestService(carts, catalog, &stockMock{}, &orderLedgerMock{}, &verifierMock{}, &idemMock{})

	_, err := svc.PlaceOrder(context.Background(), Request{
		UserID: 1,
		Proof:  payment.Proof{Method: payment.MethodCOD},
	})
	assert.ErrorIs(t, err, ErrProductUnavailable)
}

func TestPlaceOrder_UnknownUnitIndex(t *testing.T) {
	carts := &cartStoreMock{getFn: func(ctx context.Context, userID uint) (*cart.Cart, error) {
		return &cart.Cart{UserID: 1, Items: []cart.Item{
			{ProductID: 10, UnitIndex: 9, Quantity: 1},
		}}, nil
	}}
	catalog := &catalogMock{getProductFn: func(id uint) (*product.Product, error) {
		return almondProduct(), nil
	}}

	svc := newTestService(carts, catalog, &stockMock{}, &orderLedgerMock{}, &verifierMock{}, &idemMock{})

	_, err := svc.PlaceOrder(context.Background(), Request{
		UserID: 1,
		Proof:  payment.Proof{Method: payment.MethodCOD},
	})
	assert.ErrorIs(t, err, ErrProductUnavailable)
}

func TestPlaceOrder_InsufficientStockCompensates(t *testing.T) {
	var released []stock.Line

	carts := &cartStoreMock{getFn: func(ctx context.Context, userID uint) (*cart.Cart, error) {
		return twoItemCart(), nil
	}}
	catalog := &catalogMock{getProductFn: func(id uint) (*product.Product, error) {
		return almondProduct(), nil
	}}
	st := &stockMock{
		decrementFn: func(ctx context.Context, lines []stock.Line) ([]stock.Line, error) {
			// First line succeeds, second runs out.
			return lines[:1], &stock.InsufficientStockError{Lines: []stock.InsufficientLine{{
				ProductID: lines[1].ProductID,
				UnitIndex: lines[1].UnitIndex,
				Requested: lines[1].Quantity,
			}}}
		},
		incrementFn: func(ctx context.Context, lines []stock.Line) error {
			released = lines
			return nil
		},
	}
	orderCreated := false
	orders := &orderLedgerMock{createFn: func(ctx context.Context, o *order.Order) (*order.Order, error) {
		orderCreated = true
		return o, nil
	}}

	svc := newTestService(carts, catalog, st, orders, &verifierMock{}, &idemMock{})

	_, err := svc.PlaceOrder(context.Background(), Request{
		UserID: 1,
		Proof:  payment.Proof{Method: payment.MethodCOD},
	})
	assert.ErrorIs(t, err, stock.ErrInsufficientStock)
	assert.False(t, orderCreated)

	require.Len(t, released, 1)
	assert.Equal(t, uint(10), released[0].ProductID)
	assert.Equal(t, 0, released[0].UnitIndex)
	assert.Equal(t, 2, released[0].Quantity)
}

func TestPlaceOrder_OrderCreateFailureCompensates(t *testing.T) {
	var released []stock.Line
	cartCleared := false

	carts := &cartStoreMock{
		getFn: func(ctx context.Context, userID uint) (*cart.Cart, error) {
			return twoItemCart(), nil
		},
		clearFn: func(ctx context.Context, userID uint) error {
			cartCleared = true
			return nil
		},
	}
	catalog := &catalogMock{getProductFn: func(id uint) (*product.Product, error) {
		return almondProduct(), nil
	}}
	st := &stockMock{incrementFn: func(ctx context.Context, lines []stock.Line) error {
		released = lines
		return nil
	}}
	orders := &orderLedgerMock{createFn: func(ctx context.Context, o *order.Order) (*order.Order, error) {
		return nil, errors.New("db down")
	}}

	svc := newTestService(carts, catalog, st, orders, &verifierMock{}, &idemMock{})

	_, err := svc.PlaceOrder(context.Background(), Request{
		UserID: 1,
		Proof:  payment.Proof{Method: payment.MethodCOD},
	})
	require.Error(t, err)

	assert.Len(t, released, 2, "all decremented lines must be returned")
	assert.False(t, cartCleared)
}

func TestPlaceOrder_CartClearFailureIsNonFatal(t *testing.T) {
	carts := &cartStoreMock{
		getFn: func(ctx context.Context, userID uint) (*cart.Cart, error) {
			return twoItemCart(), nil
		},
		clearFn: func(ctx context.Context, userID uint) error {
			return errors.New("redis down")
		},
	}
	catalog := &catalogMock{getProductFn: func(id uint) (*product.Product, error) {
		return almondProduct(), nil
	}}
	orders := &orderLedgerMock{createFn: func(ctx context.Context, o *order.Order) (*order.Order, error) {
		o.ID = 5
		return o, nil
	}}

	svc := newTestService(carts, catalog, &stockMock{}, orders, &verifierMock{}, &idemMock{})

	o, err := svc.PlaceOrder(context.Background(), Request{
		UserID: 1,
		Proof:  payment.Proof{Method: payment.MethodCOD},
	})
	require.NoError(t, err)
	assert.Equal(t, uint(5), o.ID)
}

func TestPlaceOrder_IdempotentReplayReturnsOriginal(t *testing.T) {
	orderCreated := false
	existing := &order.Order{ID: 42, UserID: 1, Status: order.StatusPending}

	idem := &idemMock{reserveFn: func(ctx context.Context, userID uint, key string) (bool, uint, error) {
		return false, 42, nil
	}}
	orders := &orderLedgerMock{
		createFn: func(ctx context.Context, o *order.Order) (*order.Order, error) {
			orderCreated = true
			return o, nil
		},
		getByIDFn: func(ctx context.Context, orderID uint, userID uint) (*order.Order, error) {
			assert.Equal(t, uint(42), orderID)
			assert.Equal(t, uint(1), userID)
			return existing, nil
		},
	}

	svc := newTestService(&cartStoreMock{}, &catalogMock{}, &stockMock{}, orders, &verifierMock{}, idem)

	o, err := svc.PlaceOrder(context.Background(), Request{
		UserID:         1,
		Proof:          payment.Proof{Method: payment.MethodCOD},
		IdempotencyKey: "retry-1",
	})
	require.NoError(t, err)
	assert.Equal(t, uint(42), o.ID)
	assert.False(t, orderCreated, "replay must not place a second order")
}

func TestPlaceOrder_InFlightKeyRejected(t *testing.T) {
	idem := &idemMock{reserveFn: func(ctx context.Context, userID uint, key string) (bool, uint, error) {
		return false, 0, nil
	}}

	svc := newTestService(&cartStoreMock{}, &catalogMock{}, &stockMock{}, &orderLedgerMock{}, &verifierMock{}, idem)

	_, err := svc.PlaceOrder(context.Background(), Request{
		UserID:         1,
		Proof:          payment.Proof{Method: payment.MethodCOD},
		IdempotencyKey: "retry-1",
	})
	assert.ErrorIs(t, err, ErrRequestInFlight)
}

func TestPlaceOrder_FailedAttemptReleasesKey(t *testing.T) {
	released := false
	completed := false

	idem := &idemMock{
		reserveFn: func(ctx context.Context, userID uint, key string) (bool, uint, error) {
			return true, 0, nil
		},
		completeFn: func(ctx context.Context, userID uint, key string, orderID uint) error {
			completed = true
			return nil
		},
		releaseFn: func(ctx context.Context, userID uint, key string) error {
			released = true
			return nil
		},
	}
	carts := &cartStoreMock{getFn: func(ctx context.Context, userID uint) (*cart.Cart, error) {
		return &cart.Cart{UserID: 1}, nil
	}}

	svc := newTestService(carts, &catalogMock{}, &stockMock{}, &orderLedgerMock{}, &verifierMock{}, idem)

	_, err := svc.PlaceOrder(context.Background(), Request{
		UserID:         1,
		Proof:          payment.Proof{Method: payment.MethodCOD},
		IdempotencyKey: "retry-1",
	})
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.True(t, released, "key must be freed so the client can retry")
	assert.False(t, completed)
}

func TestQuote_MatchesPlaceOrderTotal(t *testing.T) {
	carts := &cartStoreMock{getFn: func(ctx context.Context, userID uint) (*cart.Cart, error) {
		// Stale snapshot prices; both paths must reprice from the catalog.
		return twoItemCart(), nil
	}}
	catalog := &catalogMock{getProductFn: func(id uint) (*product.Product, error) {
		return almondProduct(), nil
	}}
	orders := &orderLedgerMock{createFn: func(ctx context.Context, o *order.Order) (*order.Order, error) {
		o.ID = 1
		return o, nil
	}}

	svc := newTestService(carts, catalog, &stockMock{}, orders, &verifierMock{}, &idemMock{})

	quoted, err := svc.Quote(context.Background(), 1)
	require.NoError(t, err)

	o, err := svc.PlaceOrder(context.Background(), Request{
		UserID: 1,
		Proof:  payment.Proof{Method: payment.MethodCOD},
	})
	require.NoError(t, err)

	assert.Equal(t, o.Total, quoted, "gateway amount must equal the eventual order total")
}

func TestQuote_EmptyCart(t *testing.T) {
	carts := &cartStoreMock{getFn: func(ctx context.Context, userID uint) (*cart.Cart, error) {
		return &cart.Cart{UserID: 1}, nil
	}}

	svc := newTestService(carts, &catalogMock{}, &stockMock{}, &orderLedgerMock{}, &verifierMock{}, &idemMock{})

	_, err := svc.Quote(context.Background(), 1)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestQuote_UnavailableProduct(t *testing.T) {
	carts := &cartStoreMock{getFn: func(ctx context.Context, userID uint) (*cart.Cart, error) {
		return twoItemCart(), nil
	}}
	catalog := &catalogMock{getProductFn: func(id uint) (*product.Product, error) {
		p := almondProduct()
		p.IsActive = false
		return p, nil
	}}

	svc := newTestService(carts, catalog, &stockMock{}, &orderLedgerMock{}, &verifierMock{}, &idemMock{})

	_, err := svc.Quote(context.Background(), 1)
	assert.ErrorIs(t, err, ErrProductUnavailable)
}

func TestPlaceOrder_SuccessRecordsIdempotencyResult(t *testing.T) {
	var recordedOrderID uint

	idem := &idemMock{
		reserveFn: func(ctx context.Context, userID uint, key string) (bool, uint, error) {
			return true, 0, nil
		},
		completeFn: func(ctx context.Context, userID uint, key string, orderID uint) error {
			recordedOrderID = orderID
			return nil
		},
	}
	carts := &cartStoreMock{getFn: func(ctx context.Context, userID uint) (*cart.Cart, error) {
		return twoItemCart(), nil
	}}
	catalog := &catalogMock{getProductFn: func(id uint) (*product.Product, error) {
		return almondProduct(), nil
	}}
	orders := &orderLedgerMock{createFn: func(ctx context.Context, o *order.Order) (*order.Order, error) {
		o.ID = 99
		return o, nil
	}}

	svc := newTestService(carts, catalog, &stockMock{}, orders, &verifierMock{}, idem)

	_, err := svc.PlaceOrder(context.Background(), Request{
		UserID:         1,
		Proof:          payment.Proof{Method: payment.MethodCOD},
		IdempotencyKey: "retry-1",
	})
	require.NoError(t, err)
	assert.Equal(t, uint(99), recordedOrderID)
}
