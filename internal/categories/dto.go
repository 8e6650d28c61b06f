package categories

import (
	"time"

	"github.com/google/uuid"

	"github.com/storefront-labs/storefront-backend/pkg/db/models"
	"github.com/storefront-labs/storefront-backend/pkg/pagination"
)

// CreateCategoryInput is the admin payload for a new category. Slug is derived from
// the title when omitted.
type CreateCategoryInput struct {
	Title       string  `json:"title" validate:"required,max=50"`
	Slug        string  `json:"slug,omitempty" validate:"omitempty,max=55,slug"`
	Description string  `json:"description"`
	Image       *string `json:"image,omitempty" validate:"omitempty,max=255"`
	IsActive    bool    `json:"is_active"`
	IsFeatured  bool    `json:"is_featured"`
}

// UpdateCategoryInput holds optional replacements.
type UpdateCategoryInput struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,max=50"`
	Slug        *string `json:"slug,omitempty" validate:"omitempty,max=55,slug"`
	Description *string `json:"description,omitempty"`
	Image       *string `json:"image,omitempty" validate:"omitempty,max=255"`
	IsActive    *bool   `json:"is_active,omitempty"`
	IsFeatured  *bool   `json:"is_featured,omitempty"`
}

// ListFilters narrows category listings; nil fields are ignored.
type ListFilters struct {
	IsActive   *bool
	IsFeatured *bool
}

// CategoryDTO is the transport shape of a category.
type CategoryDTO struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Image       *string   `json:"image,omitempty"`
	IsActive    bool      `json:"is_active"`
	IsFeatured  bool      `json:"is_featured"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CategoryList is one page of categories.
type CategoryList = pagination.Page[CategoryDTO]

func FromModel(c *models.Category) *CategoryDTO {
	if c == nil {
		return nil
	}
	return &CategoryDTO{
		ID:          c.ID,
		Title:       c.Title,
		Slug:        c.Slug,
		Description: c.Description,
		Image:       c.Image,
		IsActive:    c.IsActive,
		IsFeatured:  c.IsFeatured,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func cursorOf(c CategoryDTO) pagination.Cursor {
	return pagination.Cursor{CreatedAt: c.CreatedAt, ID: c.ID}
}
