package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Address is a delivery address owned by exactly one user. State holds the
// street/region line.
type Address struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	Locality  string    `gorm:"column:locality;type:varchar(150);not null"`
	City      string    `gorm:"column:city;type:varchar(150);not null"`
	State     string    `gorm:"column:state;type:varchar(150);not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (a *Address) BeforeCreate(*gorm.DB) error {
	a.ID = ensureID(a.ID)
	return nil
}
