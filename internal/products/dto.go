package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront-labs/storefront-backend/pkg/db/models"
	"github.com/storefront-labs/storefront-backend/pkg/pagination"
)

// CreateProductInput is the admin payload for a catalog item. Price accepts a JSON
// string or number and is stored as NUMERIC(8,2).
type CreateProductInput struct {
	Title             string          `json:"title" validate:"required,max=150"`
	Slug              string          `json:"slug,omitempty" validate:"omitempty,max=160,slug"`
	SKU               string          `json:"sku" validate:"required,max=255"`
	ShortDescription  string          `json:"short_description" validate:"required"`
	DetailDescription *string         `json:"detail_description,omitempty"`
	Image             *string         `json:"image,omitempty" validate:"omitempty,max=255"`
	Price             decimal.Decimal `json:"price"`
	CategoryID        uuid.UUID       `json:"category_id" validate:"required"`
	IsActive          bool            `json:"is_active"`
	IsFeatured        bool            `json:"is_featured"`
}

// UpdateProductInput holds optional replacements.
type UpdateProductInput struct {
	Title             *string          `json:"title,omitempty" validate:"omitempty,max=150"`
	Slug              *string          `json:"slug,omitempty" validate:"omitempty,max=160,slug"`
	SKU               *string          `json:"sku,omitempty" validate:"omitempty,max=255"`
	ShortDescription  *string          `json:"short_description,omitempty"`
	DetailDescription *string          `json:"detail_description,omitempty"`
	Image             *string          `json:"image,omitempty" validate:"omitempty,max=255"`
	Price             *decimal.Decimal `json:"price,omitempty"`
	CategoryID        *uuid.UUID       `json:"category_id,omitempty"`
	IsActive          *bool            `json:"is_active,omitempty"`
	IsFeatured        *bool            `json:"is_featured,omitempty"`
}

// ListFilters narrows product listings; nil fields are ignored.
type ListFilters struct {
	CategoryID *uuid.UUID
	IsActive   *bool
	IsFeatured *bool
}

// ProductDTO is the transport shape of a product. Price serializes as a string to
// keep its exact decimal value.
type ProductDTO struct {
	ID                uuid.UUID       `json:"id"`
	Title             string          `json:"title"`
	Slug              string          `json:"slug"`
	SKU               string          `json:"sku"`
	ShortDescription  string          `json:"short_description"`
	DetailDescription *string         `json:"detail_description,omitempty"`
	Image             *string         `json:"image,omitempty"`
	Price             decimal.Decimal `json:"price"`
	CategoryID        uuid.UUID       `json:"category_id"`
	IsActive          bool            `json:"is_active"`
	IsFeatured        bool            `json:"is_featured"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ProductList is one page of products.
type ProductList = pagination.Page[ProductDTO]

func FromModel(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}
	return &ProductDTO{
		ID:                p.ID,
		Title:             p.Title,
		Slug:              p.Slug,
		SKU:               p.SKU,
		ShortDescription:  p.ShortDescription,
		DetailDescription: p.DetailDescription,
		Image:             p.Image,
		Price:             p.Price.Round(2),
		CategoryID:        p.CategoryID,
		IsActive:          p.IsActive,
		IsFeatured:        p.IsFeatured,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func cursorOf(p ProductDTO) pagination.Cursor {
	return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
}
