package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a sellable catalog item. SKU is unique across the catalog.
type Product struct {
	ID                uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Title             string          `gorm:"column:title;type:varchar(150);not null"`
	Slug              string          `gorm:"column:slug;type:varchar(160);not null;index"`
	SKU               string          `gorm:"column:sku;type:varchar(255);not null;uniqueIndex"`
	ShortDescription  string          `gorm:"column:short_description;type:text;not null"`
	DetailDescription *string         `gorm:"column:detail_description;type:text"`
	Image             *string         `gorm:"column:image;type:varchar(255)"`
	Price             decimal.Decimal `gorm:"column:price;type:numeric(8,2);not null"`
	CategoryID        uuid.UUID       `gorm:"column:category_id;type:uuid;not null;index"`
	IsActive          bool            `gorm:"column:is_active;not null"`
	IsFeatured        bool            `gorm:"column:is_featured;not null"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	p.ID = ensureID(p.ID)
	return nil
}
