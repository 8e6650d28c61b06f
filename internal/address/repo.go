package address

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront-labs/storefront-backend/internal/repo"
	"github.com/storefront-labs/storefront-backend/pkg/db/models"
)

// Repository persists delivery addresses.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Base.WithTx(tx)}
}

func (r *Repository) Create(ctx context.Context, addr *models.Address) (*models.Address, error) {
	if err := r.DB(ctx).Create(addr).Error; err != nil {
		return nil, err
	}
	return addr, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Address, error) {
	var addr models.Address
	if err := r.DB(ctx).First(&addr, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &addr, nil
}

// FindForUser loads the address only when userID owns it.
func (r *Repository) FindForUser(ctx context.Context, id, userID uuid.UUID) (*models.Address, error) {
	var addr models.Address
	if err := r.DB(ctx).First(&addr, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return nil, err
	}
	return &addr, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	var rows []models.Address
	err := r.DB(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) Save(ctx context.Context, addr *models.Address) error {
	return r.DB(ctx).Save(addr).Error
}

// Delete removes the address; orders shipped to it cascade.
func (r *Repository) Delete(ctx context.Context, id, userID uuid.UUID) (int64, error) {
	res := r.DB(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Address{})
	return res.RowsAffected, res.Error
}
