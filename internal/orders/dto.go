package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront-labs/storefront-backend/pkg/db/models"
	"github.com/storefront-labs/storefront-backend/pkg/enums"
	"github.com/storefront-labs/storefront-backend/pkg/pagination"
)

// CreateOrderInput places a single-line order for the caller.
type CreateOrderInput struct {
	AddressID uuid.UUID `json:"address_id" validate:"required"`
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"min=1,max=10000"`
}

// TransitionInput moves an order to Status.
type TransitionInput struct {
	Status string `json:"status" validate:"required,order_status"`
}

// OrderDTO is the transport shape of an order with its live line total.
type OrderDTO struct {
	ID          uuid.UUID         `json:"id"`
	UserID      uuid.UUID         `json:"user_id"`
	AddressID   uuid.UUID         `json:"address_id"`
	ProductID   uuid.UUID         `json:"product_id"`
	Quantity    int               `json:"quantity"`
	OrderedDate time.Time         `json:"ordered_date"`
	Status      enums.OrderStatus `json:"status"`
	Version     int               `json:"version"`
	UnitPrice   *decimal.Decimal  `json:"unit_price,omitempty"`
	LineTotal   *decimal.Decimal  `json:"line_total,omitempty"`
	ProductSKU  string            `json:"product_sku,omitempty"`
}

// OrderList is one page of orders, newest first.
type OrderList = pagination.Page[OrderDTO]

func FromModel(o *models.Order) *OrderDTO {
	if o == nil {
		return nil
	}
	dto := &OrderDTO{
		ID:          o.ID,
		UserID:      o.UserID,
		AddressID:   o.AddressID,
		ProductID:   o.ProductID,
		Quantity:    o.Quantity,
		OrderedDate: o.OrderedDate,
		Status:      o.Status,
		Version:     o.Version,
	}
	if o.Product != nil {
		price := o.Product.Price
		total := o.LineTotal()
		dto.UnitPrice = &price
		dto.LineTotal = &total
		dto.ProductSKU = o.Product.SKU
	}
	return dto
}

func cursorOf(o OrderDTO) pagination.Cursor {
	return pagination.Cursor{CreatedAt: o.OrderedDate, ID: o.ID}
}
