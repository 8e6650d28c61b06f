package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/storefront-labs/storefront-backend/pkg/enums"
)

// Order is a placed purchase of one product line. OrderedDate is write-once.
type Order struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	UserID      uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	AddressID   uuid.UUID         `gorm:"column:address_id;type:uuid;not null"`
	ProductID   uuid.UUID         `gorm:"column:product_id;type:uuid;not null"`
	Quantity    int               `gorm:"column:quantity;not null"`
	OrderedDate time.Time         `gorm:"column:ordered_date;not null;<-:create"`
	Status      enums.OrderStatus `gorm:"column:status;type:order_status;not null;index"`
	Version     int               `gorm:"column:version;not null"`
	Address     *Address          `gorm:"foreignKey:AddressID;constraint:OnDelete:CASCADE"`
	Product     *Product          `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	o.ID = ensureID(o.ID)
	if o.OrderedDate.IsZero() {
		o.OrderedDate = time.Now().UTC()
	}
	if o.Status == "" {
		o.Status = enums.OrderStatusPending
	}
	if o.Version == 0 {
		o.Version = 1
	}
	return nil
}

// LineTotal is quantity times the product's current price; zero when the product
// association is not loaded.
func (o *Order) LineTotal() decimal.Decimal {
	if o == nil || o.Product == nil {
		return decimal.Zero
	}
	return LineTotal(o.Quantity, o.Product.Price)
}
