package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/storefront-labs/storefront-backend/internal/repo"
	"github.com/storefront-labs/storefront-backend/pkg/db/models"
)

// Repository persists cart lines.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Base.WithTx(tx)}
}

func (r *Repository) Create(ctx context.Context, line *models.Cart) error {
	return r.DB(ctx).Omit(clause.Associations).Create(line).Error
}

// FindByUserAndProduct returns the single line for (userID, productID).
func (r *Repository) FindByUserAndProduct(ctx context.Context, userID, productID uuid.UUID) (*models.Cart, error) {
	var line models.Cart
	err := r.DB(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// FindForUser loads the line with its product only when userID owns it.
func (r *Repository) FindForUser(ctx context.Context, id, userID uuid.UUID) (*models.Cart, error) {
	var line models.Cart
	err := r.DB(ctx).
		Preload("Product").
		Where("id = ? AND user_id = ?", id, userID).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// ListByUser returns every line with its current product, oldest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Cart, error) {
	var rows []models.Cart
	err := r.DB(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

// UpdateQuantity writes quantity if the row is still at version.
func (r *Repository) UpdateQuantity(ctx context.Context, id uuid.UUID, version, quantity int) error {
	return repo.UpdateVersioned(r.DB(ctx), &models.Cart{}, id, version, map[string]any{"quantity": quantity})
}

func (r *Repository) Delete(ctx context.Context, id, userID uuid.UUID) (int64, error) {
	res := r.DB(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Cart{})
	return res.RowsAffected, res.Error
}

// ListByUserForUpdate is ListByUser with the cart rows locked until the
// surrounding transaction ends. SQLite ignores the lock clause.
func (r *Repository) ListByUserForUpdate(ctx context.Context, userID uuid.UUID) ([]models.Cart, error) {
	var rows []models.Cart
	err := r.DB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

// DeleteLines removes each line of userID only while it is still at the version
// that was read. The count reports how many rows matched.
func (r *Repository) DeleteLines(ctx context.Context, userID uuid.UUID, lines []models.Cart) (int64, error) {
	var deleted int64
	for _, line := range lines {
		res := r.DB(ctx).
			Where("id = ? AND user_id = ? AND version = ?", line.ID, userID, line.Version).
			Delete(&models.Cart{})
		if res.Error != nil {
			return deleted, res.Error
		}
		deleted += res.RowsAffected
	}
	return deleted, nil
}
