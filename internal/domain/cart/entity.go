// internal/domain/cart/entity.go
package cart

import (
	"errors"
	"time"
)

// Sentinel errors for cart operations
var (
	ErrItemNotFound    = errors.New("cart item not found")
	ErrDuplicateItem   = errors.New("item already in cart")
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// MaxQuantityPerItem caps a single cart line
const MaxQuantityPerItem = 50

// Item is one line in a cart. Price fields are a display snapshot taken
// when the item was added; checkout recomputes totals from the catalog.
type Item struct {
	ProductID   uint   `json:"product_id"`
	UnitIndex   int    `json:"unit_index"`
	ProductName string `json:"product_name"`
	Image       string `json:"image"`
	Unit        string `json:"unit"`
	Price       int64  `json:"price"` // Effective unit price in cents at add time
	Quantity    int    `json:"quantity"`
}

// Cart is a user's cart document as stored in Redis.
type Cart struct {
	UserID    uint      `json:"user_id"`
	Items     []Item    `json:"items"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Subtotal returns the display subtotal from snapshot prices
func (c *Cart) Subtotal() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.Price * int64(item.Quantity)
	}
	return total
}

// ItemCount returns the total quantity across all lines
func (c *Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// IsEmpty reports whether the cart has no items
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// find returns the index of the line matching (productID, unitIndex), -1 if absent
func (c *Cart) find(productID uint, unitIndex int) int {
	for i, item := range c.Items {
		if item.ProductID == productID && item.UnitIndex == unitIndex {
			return i
		}
	}
	return -1
}
