package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category groups products for browsing. Deleting it cascades to its products.
type Category struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Title       string    `gorm:"column:title;type:varchar(50);not null"`
	Slug        string    `gorm:"column:slug;type:varchar(55);not null;index"`
	Description string    `gorm:"column:description;type:text;not null"`
	Image       *string   `gorm:"column:image;type:varchar(255)"`
	IsActive    bool      `gorm:"column:is_active;not null"`
	IsFeatured  bool      `gorm:"column:is_featured;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Category) BeforeCreate(*gorm.DB) error {
	c.ID = ensureID(c.ID)
	return nil
}
