// internal/domain/stock/errors.go
package stock

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for stock operations
var (
	ErrUnitNotFound      = errors.New("product unit not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
)

// InsufficientLine identifies one unit variant that could not be satisfied
type InsufficientLine struct {
	ProductID   uint
	UnitIndex   int
	ProductName string
	Requested   int
}

func (l InsufficientLine) String() string {
	if l.ProductName != "" {
		return fmt.Sprintf("%s (unit %d): requested %d", l.ProductName, l.UnitIndex, l.Requested)
	}
	return fmt.Sprintf("product %d (unit %d): requested %d", l.ProductID, l.UnitIndex, l.Requested)
}

// InsufficientStockError reports every line of a multi-line operation that
// could not be satisfied. It unwraps to ErrInsufficientStock.
type InsufficientStockError struct {
	Lines []InsufficientLine
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, len(e.Lines))
	for i, line := range e.Lines {
		parts[i] = line.String()
	}
	return "insufficient stock for " + strings.Join(parts, "; ")
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}
