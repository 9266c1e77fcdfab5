// internal/domain/cart/store.go
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// CartTTL is how long an untouched cart survives
const CartTTL = 30 * 24 * time.Hour

// Store persists carts as per-user JSON documents in Redis.
type Store struct {
	redis  *redis.Client
	logger *logrus.Logger
}

// NewStore creates a new cart store
func NewStore(redisClient *redis.Client, logger *logrus.Logger) *Store {
	return &Store{
		redis:  redisClient,
		logger: logger,
	}
}

func cartKey(userID uint) string {
	return fmt.Sprintf("cart:user:%d", userID)
}

// Get loads a user's cart, returning an empty cart if none exists
func (s *Store) Get(ctx context.Context, userID uint) (*Cart, error) {
	data, err := s.redis.Get(ctx, cartKey(userID)).Result()
	if err == redis.Nil {
		return &Cart{UserID: userID, Items: []Item{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var c Cart
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		// A corrupt document is unrecoverable; start the user fresh.
		s.logger.WithError(err).WithField("user_id", userID).Warn("Discarding corrupt cart document")
		return &Cart{UserID: userID, Items: []Item{}}, nil
	}

	return &c, nil
}

// save writes the cart back and refreshes its TTL
func (s *Store) save(ctx context.Context, c *Cart) error {
	c.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to serialize cart: %w", err)
	}

	if err := s.redis.Set(ctx, cartKey(c.UserID), data, CartTTL).Err(); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}

	return nil
}

// AddItem adds a unit variant to the cart. A line for the same (product,
// unit) pair already existing is an error; quantity changes go through
// UpdateQuantity.
func (s *Store) AddItem(ctx context.Context, userID uint, item Item) (*Cart, error) {
	if item.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if item.Quantity > MaxQuantityPerItem {
		item.Quantity = MaxQuantityPerItem
	}

	c, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if c.find(item.ProductID, item.UnitIndex) >= 0 {
		return nil, ErrDuplicateItem
	}
	c.Items = append(c.Items, item)

	if err := s.save(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

// UpdateQuantity sets the quantity of an existing line. Removal is its own
// operation; a quantity below one is invalid here.
func (s *Store) UpdateQuantity(ctx context.Context, userID uint, productID uint, unitIndex int, quantity int) (*Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if quantity > MaxQuantityPerItem {
		quantity = MaxQuantityPerItem
	}

	c, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	i := c.find(productID, unitIndex)
	if i < 0 {
		return nil, ErrItemNotFound
	}

	c.Items[i].Quantity = quantity

	if err := s.save(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

// RemoveItem removes a line from the cart
func (s *Store) RemoveItem(ctx context.Context, userID uint, productID uint, unitIndex int) (*Cart, error) {
	c, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	i := c.find(productID, unitIndex)
	if i < 0 {
		return nil, ErrItemNotFound
	}

	c.Items = append(c.Items[:i], c.Items[i+1:]...)

	if err := s.save(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

// Clear deletes the user's cart document entirely
func (s *Store) Clear(ctx context.Context, userID uint) error {
	if err := s.redis.Del(ctx, cartKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
