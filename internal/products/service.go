package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/storefront-labs/storefront-backend/pkg/db"
	"github.com/storefront-labs/storefront-backend/pkg/db/models"
	pkgerrors "github.com/storefront-labs/storefront-backend/pkg/errors"
	"github.com/storefront-labs/storefront-backend/pkg/logger"
	"github.com/storefront-labs/storefront-backend/pkg/pagination"
	"github.com/storefront-labs/storefront-backend/pkg/validation"
)

const (
	maxTitleLen = 150
	maxSlugLen  = 160
	maxSKULen   = 255
)

// Service exposes catalog product management.
type Service interface {
	Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	GetBySlug(ctx context.Context, slug string) (*ProductDTO, error)
	GetBySKU(ctx context.Context, sku string) (*ProductDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filters ListFilters, params pagination.Params) (*ProductList, error)
}

// service implements the product service.
type service struct {
	repo *Repository
	logg *logger.Logger
}

// NewService constructs a product service instance.
func NewService(repo *Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

// Create inserts the product. A duplicate SKU leaves the existing row untouched and
// returns UNIQUE_VIOLATION.
func (s *service) Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	if err := validation.Struct(&input); err != nil {
		return nil, err
	}
	product := &models.Product{
		DetailDescription: input.DetailDescription,
		Image:             input.Image,
		Price:             input.Price,
		CategoryID:        input.CategoryID,
		IsActive:          input.IsActive,
		IsFeatured:        input.IsFeatured,
	}
	title, sku, shortDesc := input.Title, input.SKU, input.ShortDescription
	if err := applyText(product, &title, &sku, &shortDesc); err != nil {
		return nil, err
	}
	if err := setSlug(product, input.Slug); err != nil {
		return nil, err
	}
	if err := validation.Price("price", product.Price); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, mapWriteError(err, "create product", product.SKU)
	}
	ctx = s.logg.WithFields(ctx, map[string]any{"product_id": created.ID.String(), "sku": created.SKU})
	s.logg.Info(ctx, "product created")
	return FromModel(created), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, db.MapError(err, "load product")
	}
	return FromModel(product), nil
}

func (s *service) GetBySlug(ctx context.Context, value string) (*ProductDTO, error) {
	product, err := s.repo.FindBySlug(ctx, strings.TrimSpace(value))
	if err != nil {
		return nil, db.MapError(err, "load product")
	}
	return FromModel(product), nil
}

func (s *service) GetBySKU(ctx context.Context, sku string) (*ProductDTO, error) {
	product, err := s.repo.FindBySKU(ctx, strings.TrimSpace(sku))
	if err != nil {
		return nil, db.MapError(err, "load product")
	}
	return FromModel(product), nil
}

// Update applies the patch. Price changes are visible to every cart line on its
// next read because line totals are never stored.
func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	if err := validation.Struct(&input); err != nil {
		return nil, err
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, db.MapError(err, "load product")
	}
	if err := applyUpdateToProduct(product, input); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, product); err != nil {
		return nil, mapWriteError(err, "update product", product.SKU)
	}
	return FromModel(product), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return db.MapError(err, "delete product")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	s.logg.Info(s.logg.WithField(ctx, "product_id", id.String()), "product deleted")
	return nil
}

func (s *service) List(ctx context.Context, filters ListFilters, params pagination.Params) (*ProductList, error) {
	rows, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return nil, db.MapError(err, "list products")
	}
	items := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromModel(&rows[i]))
	}
	page := pagination.BuildPage(items, params.Limit, cursorOf)
	return &page, nil
}

func applyUpdateToProduct(product *models.Product, input UpdateProductInput) error {
	if err := applyText(product, input.Title, input.SKU, input.ShortDescription); err != nil {
		return err
	}
	if input.Slug != nil {
		if err := setSlug(product, *input.Slug); err != nil {
			return err
		}
	}
	if input.DetailDescription != nil {
		product.DetailDescription = input.DetailDescription
	}
	if input.Image != nil {
		product.Image = input.Image
	}
	if input.Price != nil {
		if err := validation.Price("price", *input.Price); err != nil {
			return err
		}
		product.Price = *input.Price
	}
	if input.CategoryID != nil {
		product.CategoryID = *input.CategoryID
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if input.IsFeatured != nil {
		product.IsFeatured = *input.IsFeatured
	}
	return nil
}

// applyText trims and assigns each non-nil required text field.
func applyText(product *models.Product, title, sku, shortDesc *string) error {
	if title != nil {
		v, err := validation.Required("title", *title, maxTitleLen)
		if err != nil {
			return err
		}
		product.Title = v
	}
	if sku != nil {
		v, err := validation.Required("sku", *sku, maxSKULen)
		if err != nil {
			return err
		}
		product.SKU = v
	}
	if shortDesc != nil {
		v, err := validation.Required("short_description", *shortDesc, 0)
		if err != nil {
			return err
		}
		product.ShortDescription = v
	}
	return nil
}

// setSlug keeps a supplied slug and otherwise derives one from the title.
func setSlug(product *models.Product, supplied string) error {
	if s := strings.TrimSpace(supplied); s != "" {
		product.Slug = s
		return nil
	}
	derived := slug.Make(product.Title)
	if len(derived) > maxSlugLen {
		derived = strings.Trim(derived[:maxSlugLen], "-")
	}
	if derived == "" {
		return validation.Field("slug", "cannot be derived from title")
	}
	product.Slug = derived
	return nil
}

func mapWriteError(err error, op, sku string) error {
	if db.IsUniqueViolation(err, "sku") {
		return pkgerrors.Wrap(pkgerrors.CodeUnique, err, "sku already exists").
			WithDetails(map[string]any{"sku": sku})
	}
	if db.IsForeignKeyViolation(err) {
		return pkgerrors.Wrap(pkgerrors.CodeForeignKey, err, "category does not exist").
			WithDetails(map[string]any{"field": "category_id"})
	}
	return db.MapError(err, op)
}
