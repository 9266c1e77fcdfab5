// internal/domain/product/entity.go
package product

import (
	"time"

	"gorm.io/gorm"
)

// Product represents the product entity
type Product struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null;size:255" json:"name"`
	Slug        string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description string         `gorm:"type:text" json:"description"`
	Category    string         `gorm:"size:100;index" json:"category"`
	Image       string         `gorm:"size:500" json:"image"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Units []ProductUnit `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"units"`
}

// ProductUnit represents one purchasable configuration of a product
// (e.g. "500g pack"). Units are addressed by their position in the
// product's unit list; UnitIndex persists that position so existing
// carts and orders keep their meaning when rows are reloaded.
type ProductUnit struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_product_unit_pos,priority:1" json:"product_id"`
	UnitIndex int       `gorm:"not null;uniqueIndex:idx_product_unit_pos,priority:2" json:"unit_index"`
	Unit      string    `gorm:"not null;size:50" json:"unit"`     // Label, e.g. "500g"
	Quantity  int       `gorm:"default:1" json:"quantity"`        // Pack size
	Price     int64     `gorm:"not null" json:"price"`            // Price in cents
	Discount  int       `gorm:"default:0" json:"discount"`        // Percent off nominal price
	Stock     int       `gorm:"not null;default:0" json:"stock"`  // Authoritative available count
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides
func (Product) TableName() string     { return "products" }
func (ProductUnit) TableName() string { return "product_units" }

// UnitAt returns the unit at the given positional index, nil if out of range
func (p *Product) UnitAt(index int) *ProductUnit {
	for i := range p.Units {
		if p.Units[i].UnitIndex == index {
			return &p.Units[i]
		}
	}
	return nil
}

// EffectivePrice returns the unit price after discount
func (u *ProductUnit) EffectivePrice() int64 {
	if u.Discount <= 0 || u.Discount >= 100 {
		return u.Price
	}
	return u.Price - u.Price*int64(u.Discount)/100
}

// IsInStock reports whether at least one unit can be purchased
func (u *ProductUnit) IsInStock() bool {
	return u.Stock > 0
}
