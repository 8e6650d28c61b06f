package cart

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

// maxMergeAttempts bounds retries when concurrent adds race on the same line.
const maxMergeAttempts = 3

// Service manages a user's cart. Adding a product already in the cart merges
// quantities into the existing line.
type Service interface {
	AddOrIncrement(ctx context.Context, userID uuid.UUID, input AddItemInput) (*LineDTO, error)
	SetQuantity(ctx context.Context, userID, cartID uuid.UUID, input SetQuantityInput) (*LineDTO, error)
	Remove(ctx context.Context, userID, cartID uuid.UUID) error
	ListForUser(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
}

type productReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type service struct {
	repo     *Repository
	products productReader
	logg     *logger.Logger
}

func NewService(repo *Repository, products productReader, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product reader required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, products: products, logg: logg}, nil
}

func (s *service) AddOrIncrement(ctx context.Context, userID uuid.UUID, input AddItemInput) (*LineDTO, error) {
	if err := validation.Struct(&input); err != nil {
		return nil, err
	}
	product, err := s.products.FindByID(ctx, input.ProductID)
	if err != nil {
		return nil, db.MapError(err, "load product")
	}
	if !product.IsActive {
		return nil, validation.Field("product_id", "product is not available")
	}

	var lastErr error
	for attempt := 0; attempt < maxMergeAttempts; attempt++ {
		line, err := s.mergeOnce(ctx, userID, input)
		if err == nil {
			line.Product = product
			dto := lineFromModel(line)
			return &dto, nil
		}
		if !pkgerrors.Is(err, pkgerrors.CodeConflict) {
			return nil, err
		}
		lastErr = err
		s.logg.Debug(s.logg.WithField(ctx, "attempt", attempt+1), "cart merge lost a race; retrying")
	}
	return nil, lastErr
}

// mergeOnce increments the existing line or inserts a new one. A lost insert or
// version race surfaces as CONFLICT so the caller can retry.
func (s *service) mergeOnce(ctx context.Context, userID uuid.UUID, input AddItemInput) (*models.Cart, error) {
	existing, err := s.repo.FindByUserAndProduct(ctx, userID, input.ProductID)
	switch {
	case err == nil:
		if existing.Quantity > validation.MaxQuantity-input.Quantity {
			return nil, validation.Field("quantity", fmt.Sprintf("line would exceed %d units", validation.MaxQuantity))
		}
		quantity := existing.Quantity + input.Quantity
		if err := s.repo.UpdateQuantity(ctx, existing.ID, existing.Version, quantity); err != nil {
			return nil, db.MapError(err, "increment cart line")
		}
		return s.reload(ctx, existing.ID, userID)
	case !db.IsNotFound(err):
		return nil, db.MapError(err, "load cart line")
	}

	line := &models.Cart{UserID: userID, ProductID: input.ProductID, Quantity: input.Quantity}
	if err := s.repo.Create(ctx, line); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "cart line created concurrently")
		}
		return nil, db.MapError(err, "create cart line")
	}
	return line, nil
}

func (s *service) SetQuantity(ctx context.Context, userID, cartID uuid.UUID, input SetQuantityInput) (*LineDTO, error) {
	if err := validation.Struct(&input); err != nil {
		return nil, err
	}
	line, err := s.repo.FindForUser(ctx, cartID, userID)
	if err != nil {
		return nil, db.MapError(err, "load cart line")
	}
	version := line.Version
	if input.Version != nil {
		version = *input.Version
	}
	if err := s.repo.UpdateQuantity(ctx, line.ID, version, input.Quantity); err != nil {
		return nil, db.MapError(err, "update cart line")
	}
	updated, err := s.reload(ctx, line.ID, userID)
	if err != nil {
		return nil, err
	}
	dto := lineFromModel(updated)
	return &dto, nil
}

// reload reads a line back after a versioned update so callers see the stored
// version and updated_at.
func (s *service) reload(ctx context.Context, id, userID uuid.UUID) (*models.Cart, error) {
	line, err := s.repo.FindForUser(ctx, id, userID)
	if err != nil {
		return nil, db.MapError(err, "reload cart line")
	}
	return line, nil
}

func (s *service) Remove(ctx context.Context, userID, cartID uuid.UUID) error {
	affected, err := s.repo.Delete(ctx, cartID, userID)
	if err != nil {
		return db.MapError(err, "remove cart line")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}
	return nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, db.MapError(err, "list cart")
	}
	return cartFromModels(userID, rows), nil
}
