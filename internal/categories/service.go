package categories

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
	maxTitleLen = 50
	maxSlugLen  = 55
)

// Service manages catalog categories. Writes are admin-only at the HTTP layer.
type Service interface {
	Create(ctx context.Context, input CreateCategoryInput) (*CategoryDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*CategoryDTO, error)
	GetBySlug(ctx context.Context, slug string) (*CategoryDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateCategoryInput) (*CategoryDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filters ListFilters, params pagination.Params) (*CategoryList, error)
}

type service struct {
	repo *Repository
	logg *logger.Logger
}

func NewService(repo *Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("category repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, input CreateCategoryInput) (*CategoryDTO, error) {
	if err := validation.Struct(&input); err != nil {
		return nil, err
	}
	title, err := validation.Required("title", input.Title, maxTitleLen)
	if err != nil {
		return nil, err
	}
	categorySlug, err := resolveSlug(input.Slug, title)
	if err != nil {
		return nil, err
	}
	category := &models.Category{
		Title:       title,
		Slug:        categorySlug,
		Description: strings.TrimSpace(input.Description),
		Image:       input.Image,
		IsActive:    input.IsActive,
		IsFeatured:  input.IsFeatured,
	}
	created, err := s.repo.Create(ctx, category)
	if err != nil {
		return nil, db.MapError(err, "create category")
	}
	s.logg.Info(s.logg.WithField(ctx, "category_id", created.ID.String()), "category created")
	return FromModel(created), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*CategoryDTO, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, db.MapError(err, "load category")
	}
	return FromModel(category), nil
}

func (s *service) GetBySlug(ctx context.Context, value string) (*CategoryDTO, error) {
	category, err := s.repo.FindBySlug(ctx, strings.TrimSpace(value))
	if err != nil {
		return nil, db.MapError(err, "load category")
	}
	return FromModel(category), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateCategoryInput) (*CategoryDTO, error) {
	if err := validation.Struct(&input); err != nil {
		return nil, err
	}
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, db.MapError(err, "load category")
	}
	if err := applyUpdate(category, input); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, category); err != nil {
		return nil, db.MapError(err, "update category")
	}
	return FromModel(category), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return db.MapError(err, "delete category")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}
	s.logg.Info(s.logg.WithField(ctx, "category_id", id.String()), "category deleted")
	return nil
}

func (s *service) List(ctx context.Context, filters ListFilters, params pagination.Params) (*CategoryList, error) {
	rows, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return nil, db.MapError(err, "list categories")
	}
	items := make([]CategoryDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromModel(&rows[i]))
	}
	page := pagination.BuildPage(items, params.Limit, cursorOf)
	return &page, nil
}

func applyUpdate(category *models.Category, input UpdateCategoryInput) error {
	if input.Title != nil {
		title, err := validation.Required("title", *input.Title, maxTitleLen)
		if err != nil {
			return err
		}
		category.Title = title
	}
	if input.Slug != nil {
		categorySlug, err := resolveSlug(*input.Slug, category.Title)
		if err != nil {
			return err
		}
		category.Slug = categorySlug
	}
	if input.Description != nil {
		category.Description = strings.TrimSpace(*input.Description)
	}
	if input.Image != nil {
		category.Image = input.Image
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}
	if input.IsFeatured != nil {
		category.IsFeatured = *input.IsFeatured
	}
	return nil
}

// resolveSlug keeps a supplied slug and otherwise derives one from the title,
// truncated to the column width.
func resolveSlug(supplied, title string) (string, error) {
	if s := strings.TrimSpace(supplied); s != "" {
		return s, nil
	}
	derived := slug.Make(title)
	if len(derived) > maxSlugLen {
		derived = strings.Trim(derived[:maxSlugLen], "-")
	}
	if derived == "" {
		return "", validation.Field("slug", "cannot be derived from title")
	}
	return derived, nil
}
