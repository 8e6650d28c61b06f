package users

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/storefront-labs/storefront-backend/pkg/db/models"
)

// UserDTO is the transport shape of the identity mirror.
type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpsertUserDTO carries the identity claims mirrored into the users table.
type UpsertUserDTO struct {
	ID    uuid.UUID `validate:"required"`
	Email string    `validate:"required,email,max=254"`
}

// Normalize trims and lowercases the email so validation sees the stored form.
func (d UpsertUserDTO) Normalize() UpsertUserDTO {
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	return d
}

func (d UpsertUserDTO) ToModel() *models.User {
	return &models.User{
		ID:       d.ID,
		Email:    d.Email,
		IsActive: true,
	}
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:        u.ID,
		Email:     u.Email,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
