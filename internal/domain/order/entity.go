// internal/domain/order/entity.go
package order

import (
	"errors"
	"fmt"
	"time"

	"github.com/your-org/storefront-backend/internal/domain/payment"
	"gorm.io/gorm"
)

// Status represents the order lifecycle state
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// PaymentStatus tracks whether the order's payment has settled
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// Sentinel errors for order operations
var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrNotCancellable    = errors.New("order can no longer be cancelled")
)

// validTransitions is the authoritative lifecycle. Anything absent here is
// rejected, including writes that restate the current status.
var validTransitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	_, ok := validTransitions[s]
	return ok
}

// CanTransitionTo reports whether the lifecycle allows moving to next
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsCancellable reports whether stock should be restored on cancel
func (s Status) IsCancellable() bool {
	return s.CanTransitionTo(StatusCancelled)
}

// Order is a placed order. Item rows snapshot the catalog at placement
// time so later price or product changes never rewrite history.
type Order struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	OrderNumber string         `gorm:"uniqueIndex;not null;size:32" json:"order_number"`
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	Status      Status         `gorm:"not null;size:20;default:'pending'" json:"status"`
	Subtotal    int64          `gorm:"not null" json:"subtotal"` // Cents
	Shipping    int64          `gorm:"not null" json:"shipping"`
	Tax         int64          `gorm:"not null" json:"tax"`
	Total       int64          `gorm:"not null" json:"total"`
	Currency    string         `gorm:"not null;size:3" json:"currency"`
	Payment     PaymentDetails `gorm:"embedded;embeddedPrefix:payment_" json:"payment"`
	Address     Address        `gorm:"embedded;embeddedPrefix:ship_" json:"address"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE;" json:"items"`
}

// PaymentDetails records how the order was paid. Online orders are created
// paid (the proof is verified before the order exists); COD stays pending
// until collection.
type PaymentDetails struct {
	Method     payment.Method `gorm:"not null;size:10" json:"method"`
	Status     PaymentStatus  `gorm:"not null;size:10;default:'pending'" json:"status"`
	OrderRef   string         `gorm:"size:64" json:"order_ref,omitempty"`
	PaymentRef string         `gorm:"size:64" json:"payment_ref,omitempty"`
}

// Address is the delivery address snapshot
type Address struct {
	Name       string `gorm:"size:100" json:"name"`
	Phone      string `gorm:"size:20" json:"phone"`
	Line1      string `gorm:"size:255" json:"line1"`
	Line2      string `gorm:"size:255" json:"line2,omitempty"`
	City       string `gorm:"size:100" json:"city"`
	State      string `gorm:"size:100" json:"state"`
	PostalCode string `gorm:"size:20" json:"postal_code"`
	Country    string `gorm:"size:100" json:"country"`
}

// OrderItem is one purchased line, snapshotted from the catalog
type OrderItem struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	OrderID     uint      `gorm:"not null;index" json:"-"`
	ProductID   uint      `gorm:"not null" json:"product_id"`
	UnitIndex   int       `gorm:"not null" json:"unit_index"`
	ProductName string    `gorm:"not null;size:255" json:"product_name"`
	Image       string    `gorm:"size:500" json:"image"`
	Unit        string    `gorm:"size:50" json:"unit"`
	UnitPrice   int64     `gorm:"not null" json:"unit_price"` // Effective price in cents
	Quantity    int       `gorm:"not null" json:"quantity"`
	LineTotal   int64     `gorm:"not null" json:"line_total"`
	CreatedAt   time.Time `json:"-"`
}

// TableName overrides
func (Order) TableName() string     { return "orders" }
func (OrderItem) TableName() string { return "order_items" }

// Transition moves the order to next, enforcing the lifecycle
func (o *Order) Transition(next Status) error {
	if !next.IsValid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, next)
	}
	if !o.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, next)
	}
	o.Status = next
	return nil
}
