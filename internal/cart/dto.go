package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront-labs/storefront-backend/pkg/db/models"
)

// AddItemInput adds quantity units of a product to the caller's cart.
type AddItemInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"min=1,max=10000"`
}

// SetQuantityInput replaces a line's quantity. Version, when set, must match the
// row's current version.
type SetQuantityInput struct {
	Quantity int  `json:"quantity" validate:"min=1,max=10000"`
	Version  *int `json:"version,omitempty" validate:"omitempty,min=1"`
}

// ProductSummary is the product snapshot shown on a cart line.
type ProductSummary struct {
	ID       uuid.UUID       `json:"id"`
	Title    string          `json:"title"`
	SKU      string          `json:"sku"`
	Price    decimal.Decimal `json:"price"`
	IsActive bool            `json:"is_active"`
}

// LineDTO is one cart row with its live total.
type LineDTO struct {
	ID         uuid.UUID       `json:"id"`
	ProductID  uuid.UUID       `json:"product_id"`
	Quantity   int             `json:"quantity"`
	Version    int             `json:"version"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Product    *ProductSummary `json:"product,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// CartDTO is every line a user holds plus the derived subtotal.
type CartDTO struct {
	UserID    uuid.UUID       `json:"user_id"`
	Lines     []LineDTO       `json:"lines"`
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// TotalPrice is quantity times the product's current price. It is computed on
// every read and never stored.
func TotalPrice(quantity int, price decimal.Decimal) decimal.Decimal {
	return models.LineTotal(quantity, price)
}

func lineFromModel(c *models.Cart) LineDTO {
	line := LineDTO{
		ID:         c.ID,
		ProductID:  c.ProductID,
		Quantity:   c.Quantity,
		Version:    c.Version,
		TotalPrice: c.TotalPrice(),
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
	if c.Product != nil {
		line.Product = &ProductSummary{
			ID:       c.Product.ID,
			Title:    c.Product.Title,
			SKU:      c.Product.SKU,
			Price:    c.Product.Price,
			IsActive: c.Product.IsActive,
		}
	}
	return line
}

func cartFromModels(userID uuid.UUID, rows []models.Cart) *CartDTO {
	out := &CartDTO{UserID: userID, Lines: make([]LineDTO, 0, len(rows)), Subtotal: decimal.Zero}
	for i := range rows {
		line := lineFromModel(&rows[i])
		out.Lines = append(out.Lines, line)
		out.ItemCount += line.Quantity
		out.Subtotal = out.Subtotal.Add(line.TotalPrice)
	}
	return out
}
