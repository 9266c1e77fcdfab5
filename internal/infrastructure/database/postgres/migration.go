// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, logger *logrus.Logger) *Migration {
	return &Migration{
		db:     db,
		logger: logger,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.logger.Info("Running database auto-migrations")

	// Dependency order: products before units, orders before items.
	models := []interface{}{
		&product.Product{},
		&product.ProductUnit{},
		&order.Order{},
		&order.OrderItem{},
	}

	for _, model := range models {
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	m.logger.Info("Database auto-migrations completed")
	return nil
}

// SeedDevelopmentData inserts a small catalog for local development. It is
// a no-op when products already exist.
func (m *Migration) SeedDevelopmentData() error {
	var count int64
	if err := m.db.Model(&product.Product{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check existing products: %w", err)
	}
	if count > 0 {
		return nil
	}

	m.logger.Info("Seeding development catalog")

	seed := []product.Product{
		{
			Name:        "California Almonds",
			Slug:        "california-almonds",
			Description: "Premium whole almonds",
			Category:    "nuts",
			IsActive:    true,
			Units: []product.ProductUnit{
				{UnitIndex: 0, Unit: "250g", Quantity: 1, Price: 24900, Stock: 50},
				{UnitIndex: 1, Unit: "500g", Quantity: 1, Price: 45000, Discount: 10, Stock: 30},
				{UnitIndex: 2, Unit: "1kg", Quantity: 1, Price: 85000, Discount: 15, Stock: 10},
			},
		},
		{
			Name:        "Kashmiri Walnuts",
			Slug:        "kashmiri-walnuts",
			Description: "Shelled walnut kernels",
			Category:    "nuts",
			IsActive:    true,
			Units: []product.ProductUnit{
				{UnitIndex: 0, Unit: "250g", Quantity: 1, Price: 34900, Stock: 40},
				{UnitIndex: 1, Unit: "500g", Quantity: 1, Price: 64900, Discount: 5, Stock: 20},
			},
		},
		{
			Name:        "Medjool Dates",
			Slug:        "medjool-dates",
			Description: "Soft premium dates",
			Category:    "dried-fruits",
			IsActive:    true,
			Units: []product.ProductUnit{
				{UnitIndex: 0, Unit: "500g", Quantity: 1, Price: 39900, Stock: 60},
			},
		},
	}

	for i := range seed {
		if err := m.db.Create(&seed[i]).Error; err != nil {
			return fmt.Errorf("failed to seed product %s: %w", seed[i].Slug, err)
		}
	}

	return nil
}
