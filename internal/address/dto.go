package address

import (
	"time"

	"github.com/google/uuid"

	"github.com/storefront-labs/storefront-backend/pkg/db/models"
)

// CreateAddressInput is the payload for a new delivery address.
type CreateAddressInput struct {
	Locality string `json:"locality" validate:"required,max=150"`
	City     string `json:"city" validate:"required,max=150"`
	State    string `json:"state" validate:"required,max=150"`
}

// UpdateAddressInput holds optional field replacements.
type UpdateAddressInput struct {
	Locality *string `json:"locality,omitempty" validate:"omitempty,max=150"`
	City     *string `json:"city,omitempty" validate:"omitempty,max=150"`
	State    *string `json:"state,omitempty" validate:"omitempty,max=150"`
}

// AddressDTO is the transport shape of an address.
type AddressDTO struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Locality  string    `json:"locality"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func FromModel(a *models.Address) *AddressDTO {
	if a == nil {
		return nil
	}
	return &AddressDTO{
		ID:        a.ID,
		UserID:    a.UserID,
		Locality:  a.Locality,
		City:      a.City,
		State:     a.State,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
