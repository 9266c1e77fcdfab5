// internal/domain/order/service.go
package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/stock"
	"gorm.io/gorm"
)

// StockReleaser restores reserved stock when an order is cancelled.
type StockReleaser interface {
	Increment(ctx context.Context, lines []stock.Line) error
}

// Service handles order persistence and lifecycle
type Service struct {
	db     *gorm.DB
	stock  StockReleaser
	logger *logrus.Logger
}

// NewService creates a new order service
func NewService(db *gorm.DB, stockLedger StockReleaser, logger *logrus.Logger) *Service {
	return &Service{
		db:     db,
		stock:  stockLedger,
		logger: logger,
	}
}

// OrderListResponse is a paginated page of a user's orders
type OrderListResponse struct {
	Orders     []Order `json:"orders"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	Total      int64   `json:"total"`
	TotalPages int     `json:"total_pages"`
}

// generateOrderNumber builds a human-readable unique order number
func generateOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", time.Now().UTC().Format("20060102"), suffix)
}

// Create persists a new order with its item snapshots
func (s *Service) Create(ctx context.Context, o *Order) (*Order, error) {
	if len(o.Items) == 0 {
		return nil, fmt.Errorf("order must have at least one item")
	}

	o.OrderNumber = generateOrderNumber()
	o.Status = StatusPending

	if err := s.db.WithContext(ctx).Create(o).Error; err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":     o.ID,
		"order_number": o.OrderNumber,
		"user_id":      o.UserID,
		"total":        o.Total,
		"method":       o.Payment.Method,
	}).Info("Order created")

	return o, nil
}

// GetByID retrieves an order. A non-zero userID scopes the lookup to that
// owner; admins pass zero to read any order.
func (s *Service) GetByID(ctx context.Context, orderID uint, userID uint) (*Order, error) {
	var o Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", orderID).
		First(&o).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}

	if userID != 0 && o.UserID != userID {
		// Hide existence of other users' orders.
		return nil, ErrOrderNotFound
	}

	return &o, nil
}

// ListByUser retrieves a user's orders, newest first
func (s *Service) ListByUser(ctx context.Context, userID uint, page, limit int) (*OrderListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var total int64
	query := s.db.WithContext(ctx).Model(&Order{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []Order
	err := query.
		Preload("Items").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}

	return &OrderListResponse{
		Orders:     orders,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}, nil
}

// UpdateStatus moves an order through the lifecycle. Admin path; the
// transition table decides what is legal. A transition into cancelled
// restores stock.
func (s *Service) UpdateStatus(ctx context.Context, orderID uint, next Status) (*Order, error) {
	o, err := s.GetByID(ctx, orderID, 0)
	if err != nil {
		return nil, err
	}

	wasCancellable := o.Status.IsCancellable()
	if err := o.Transition(next); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(o).Update("status", o.Status).Error; err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	if next == StatusCancelled && wasCancellable {
		s.restock(ctx, o)
	}

	s.logger.WithFields(logrus.Fields{
		"order_id": o.ID,
		"status":   o.Status,
	}).Info("Order status updated")

	return o, nil
}

// Cancel lets the owning user cancel an order that has not shipped.
// Reserved stock is returned to the catalog.
func (s *Service) Cancel(ctx context.Context, orderID uint, userID uint) (*Order, error) {
	o, err := s.GetByID(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}

	if !o.Status.IsCancellable() {
		return nil, fmt.Errorf("%w: status is %s", ErrNotCancellable, o.Status)
	}

	if err := o.Transition(StatusCancelled); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(o).Update("status", o.Status).Error; err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}

	s.restock(ctx, o)

	s.logger.WithFields(logrus.Fields{
		"order_id": o.ID,
		"user_id":  userID,
	}).Info("Order cancelled by user")

	return o, nil
}

// restock returns an order's reserved quantities to the stock ledger.
// Best effort: the cancellation already committed, so a release failure is
// logged for manual correction rather than surfaced to the user.
func (s *Service) restock(ctx context.Context, o *Order) {
	lines := make([]stock.Line, 0, len(o.Items))
	for _, item := range o.Items {
		lines = append(lines, stock.Line{
			ProductID: item.ProductID,
			UnitIndex: item.UnitIndex,
			Quantity:  item.Quantity,
		})
	}

	if err := s.stock.Increment(ctx, lines); err != nil {
		s.logger.WithError(err).WithField("order_id", o.ID).
			Error("Failed to restock cancelled order; manual correction required")
	}
}
