// internal/domain/stock/ledger.go
package stock

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"gorm.io/gorm"
)

// Line identifies one unit variant and a quantity to reserve or release.
type Line struct {
	ProductID uint
	UnitIndex int
	Quantity  int
}

// Ledger is the single writer of product unit stock. All mutations go
// through conditional single-statement updates so two concurrent checkouts
// can never oversell a unit.
type Ledger struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewLedger creates a new stock ledger
func NewLedger(db *gorm.DB, logger *logrus.Logger) *Ledger {
	return &Ledger{
		db:     db,
		logger: logger,
	}
}

// CheckAvailable reports whether every line can currently be satisfied,
// collecting every short line into one error so the caller can name them
// all. This is advisory: stock may change between the check and the
// commit, so Decrement re-verifies atomically.
func (l *Ledger) CheckAvailable(ctx context.Context, lines []Line) error {
	var short []InsufficientLine

	for _, line := range lines {
		if line.Quantity <= 0 {
			return ErrInvalidQuantity
		}

		var unit product.ProductUnit
		err := l.db.WithContext(ctx).
			Where("product_id = ? AND unit_index = ?", line.ProductID, line.UnitIndex).
			First(&unit).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("product %d unit %d: %w", line.ProductID, line.UnitIndex, ErrUnitNotFound)
			}
			return fmt.Errorf("failed to check stock: %w", err)
		}

		if unit.Stock < line.Quantity {
			short = append(short, InsufficientLine{
				ProductID: line.ProductID,
				UnitIndex: line.UnitIndex,
				Requested: line.Quantity,
			})
		}
	}

	if len(short) > 0 {
		return &InsufficientStockError{Lines: short}
	}
	return nil
}

// Decrement atomically reserves stock for every line. Each line is a single
// guarded UPDATE; a read-modify-write here would race under concurrency.
// On failure it returns the lines already decremented so the caller can
// compensate.
func (l *Ledger) Decrement(ctx context.Context, lines []Line) (applied []Line, err error) {
	for _, line := range lines {
		if line.Quantity <= 0 {
			return applied, ErrInvalidQuantity
		}

		result := l.db.WithContext(ctx).
			Model(&product.ProductUnit{}).
			Where("product_id = ? AND unit_index = ? AND stock >= ?",
				line.ProductID, line.UnitIndex, line.Quantity).
			UpdateColumn("stock", gorm.Expr("stock - ?", line.Quantity))

		if result.Error != nil {
			return applied, fmt.Errorf("failed to decrement stock: %w", result.Error)
		}

		if result.RowsAffected == 0 {
			// Zero rows means either the unit is gone or stock ran out
			// between the availability check and now.
			var count int64
			if err := l.db.WithContext(ctx).
				Model(&product.ProductUnit{}).
				Where("product_id = ? AND unit_index = ?", line.ProductID, line.UnitIndex).
				Count(&count).Error; err != nil {
				return applied, fmt.Errorf("failed to inspect unit after decrement miss: %w", err)
			}
			if count == 0 {
				return applied, fmt.Errorf("product %d unit %d: %w", line.ProductID, line.UnitIndex, ErrUnitNotFound)
			}
			return applied, &InsufficientStockError{Lines: []InsufficientLine{{
				ProductID: line.ProductID,
				UnitIndex: line.UnitIndex,
				Requested: line.Quantity,
			}}}
		}

		applied = append(applied, line)
	}

	return applied, nil
}

// Increment returns stock for every line. Used for compensation after a
// partial decrement and for restocking cancelled orders. Missing units are
// logged and skipped rather than failing the whole release.
func (l *Ledger) Increment(ctx context.Context, lines []Line) error {
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}

		result := l.db.WithContext(ctx).
			Model(&product.ProductUnit{}).
			Where("product_id = ? AND unit_index = ?", line.ProductID, line.UnitIndex).
			UpdateColumn("stock", gorm.Expr("stock + ?", line.Quantity))

		if result.Error != nil {
			return fmt.Errorf("failed to increment stock: %w", result.Error)
		}

		if result.RowsAffected == 0 {
			l.logger.WithFields(logrus.Fields{
				"product_id": line.ProductID,
				"unit_index": line.UnitIndex,
				"quantity":   line.Quantity,
			}).Warn("Stock release skipped: unit no longer exists")
		}
	}

	return nil
}

// SetStock overwrites a unit's stock level. Admin correction path only.
func (l *Ledger) SetStock(ctx context.Context, productID uint, unitIndex int, quantity int) error {
	if quantity < 0 {
		return ErrInvalidQuantity
	}

	result := l.db.WithContext(ctx).
		Model(&product.ProductUnit{}).
		Where("product_id = ? AND unit_index = ?", productID, unitIndex).
		UpdateColumn("stock", quantity)

	if result.Error != nil {
		return fmt.Errorf("failed to set stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("product %d unit %d: %w", productID, unitIndex, ErrUnitNotFound)
	}

	l.logger.WithFields(logrus.Fields{
		"product_id": productID,
		"unit_index": unitIndex,
		"stock":      quantity,
	}).Info("Stock level corrected")

	return nil
}
