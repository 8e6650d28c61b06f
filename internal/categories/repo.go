package categories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront-labs/storefront-backend/internal/repo"
	"github.com/storefront-labs/storefront-backend/pkg/db/models"
	"github.com/storefront-labs/storefront-backend/pkg/pagination"
)

// Repository persists catalog categories.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Base.WithTx(tx)}
}

func (r *Repository) Create(ctx context.Context, category *models.Category) (*models.Category, error) {
	if err := r.DB(ctx).Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.DB(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// FindBySlug returns the newest category carrying slug; slugs are not unique.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	err := r.DB(ctx).
		Where("slug = ?", slug).
		Order("created_at DESC").
		First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *Repository) Save(ctx context.Context, category *models.Category) error {
	return r.DB(ctx).Save(category).Error
}

// Delete removes the category; its products (and their carts and orders) cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.DB(ctx).Where("id = ?", id).Delete(&models.Category{})
	return res.RowsAffected, res.Error
}

// List returns up to params.Limit+1 rows newest first.
func (r *Repository) List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Category, error) {
	q := r.DB(ctx).Model(&models.Category{})
	if filters.IsActive != nil {
		q = q.Where("is_active = ?", *filters.IsActive)
	}
	if filters.IsFeatured != nil {
		q = q.Where("is_featured = ?", *filters.IsFeatured)
	}
	q, err := repo.ApplyCursor(q, params)
	if err != nil {
		return nil, err
	}
	var rows []models.Category
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
