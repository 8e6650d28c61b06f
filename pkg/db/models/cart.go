package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Cart is one (user, product) selection. Version guards concurrent quantity edits.
type Cart struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_carts_user_product"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_carts_user_product"`
	Quantity  int       `gorm:"column:quantity;not null"`
	Version   int       `gorm:"column:version;not null"`
	Product   *Product  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Cart) BeforeCreate(*gorm.DB) error {
	c.ID = ensureID(c.ID)
	if c.Version == 0 {
		c.Version = 1
	}
	return nil
}

// TotalPrice is quantity times the product's current price. It requires the
// Product association to be loaded and is never persisted.
func (c *Cart) TotalPrice() decimal.Decimal {
	if c == nil || c.Product == nil {
		return decimal.Zero
	}
	return LineTotal(c.Quantity, c.Product.Price)
}

// LineTotal multiplies a unit price by a quantity using fixed-point arithmetic.
func LineTotal(quantity int, price decimal.Decimal) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}
