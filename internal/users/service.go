package users

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/storefront-labs/storefront-backend/pkg/db"
	pkgerrors "github.com/storefront-labs/storefront-backend/pkg/errors"
	"github.com/storefront-labs/storefront-backend/pkg/validation"
)

// Service mirrors identities issued by the external auth provider.
type Service interface {
	Upsert(ctx context.Context, input UpsertUserDTO) (*UserDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo *Repository
}

// NewService constructs the users service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Upsert(ctx context.Context, input UpsertUserDTO) (*UserDTO, error) {
	input = input.Normalize()
	if err := validation.Struct(&input); err != nil {
		return nil, err
	}
	user, err := s.repo.Upsert(ctx, input.ToModel())
	if err != nil {
		return nil, db.MapError(err, "upsert user")
	}
	return FromModel(user), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, db.MapError(err, "load user")
	}
	return FromModel(user), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return db.MapError(err, "delete user")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return nil
}
