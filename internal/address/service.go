package address

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/storefront-labs/storefront-backend/pkg/db"
	"github.com/storefront-labs/storefront-backend/pkg/db/models"
	pkgerrors "github.com/storefront-labs/storefront-backend/pkg/errors"
	"github.com/storefront-labs/storefront-backend/pkg/logger"
	"github.com/storefront-labs/storefront-backend/pkg/validation"
)

// Service manages a user's delivery addresses.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateAddressInput) (*AddressDTO, error)
	Get(ctx context.Context, id, userID uuid.UUID) (*AddressDTO, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]AddressDTO, error)
	Update(ctx context.Context, id, userID uuid.UUID, input UpdateAddressInput) (*AddressDTO, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

type service struct {
	repo *Repository
	logg *logger.Logger
}

func NewService(repo *Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("address repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateAddressInput) (*AddressDTO, error) {
	addr := &models.Address{UserID: userID}
	if err := assignRequired(addr, &input.Locality, &input.City, &input.State); err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, addr)
	if err != nil {
		return nil, db.MapError(err, "create address")
	}
	s.logg.Info(s.addressContext(ctx, userID, created.ID), "address created")
	return FromModel(created), nil
}

func (s *service) Get(ctx context.Context, id, userID uuid.UUID) (*AddressDTO, error) {
	addr, err := s.repo.FindForUser(ctx, id, userID)
	if err != nil {
		return nil, db.MapError(err, "load address")
	}
	return FromModel(addr), nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) ([]AddressDTO, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, db.MapError(err, "list addresses")
	}
	out := make([]AddressDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, id, userID uuid.UUID, input UpdateAddressInput) (*AddressDTO, error) {
	addr, err := s.repo.FindForUser(ctx, id, userID)
	if err != nil {
		return nil, db.MapError(err, "load address")
	}
	if err := assignRequired(addr, input.Locality, input.City, input.State); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, addr); err != nil {
		return nil, db.MapError(err, "update address")
	}
	s.logg.Info(s.addressContext(ctx, userID, addr.ID), "address updated")
	return FromModel(addr), nil
}

func (s *service) Delete(ctx context.Context, id, userID uuid.UUID) error {
	affected, err := s.repo.Delete(ctx, id, userID)
	if err != nil {
		return db.MapError(err, "delete address")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
	}
	s.logg.Info(s.addressContext(ctx, userID, id), "address deleted")
	return nil
}

func (s *service) addressContext(ctx context.Context, userID, id uuid.UUID) context.Context {
	return s.logg.WithField(s.logg.WithUserID(ctx, userID.String()), "address_id", id.String())
}

// assignRequired copies every non-nil field onto addr after trimming; blank values
// are rejected.
func assignRequired(addr *models.Address, locality, city, state *string) error {
	fields := []struct {
		name  string
		value *string
		dest  *string
	}{
		{"locality", locality, &addr.Locality},
		{"city", city, &addr.City},
		{"state", state, &addr.State},
	}
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		trimmed, err := validation.Required(f.name, *f.value, 150)
		if err != nil {
			return err
		}
		*f.dest = trimmed
	}
	return nil
}
