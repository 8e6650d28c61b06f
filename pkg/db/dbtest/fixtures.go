package dbtest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/storefront-labs/storefront-backend/pkg/db/models"
)

// MustUser inserts an active user with a random email.
func MustUser(t testing.TB, tx *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		Email:    fmt.Sprintf("sf_test_%s@example.com", uuid.NewString()),
		IsActive: true,
	}
	if err := tx.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// MustAddress inserts an address owned by userID.
func MustAddress(t testing.TB, tx *gorm.DB, userID uuid.UUID) *models.Address {
	t.Helper()
	addr := &models.Address{
		UserID:   userID,
		Locality: "Yaba",
		City:     "Lagos",
		State:    "12 Herbert Macaulay Way",
	}
	if err := tx.Create(addr).Error; err != nil {
		t.Fatalf("create address: %v", err)
	}
	return addr
}

// MustCategory inserts an active category.
func MustCategory(t testing.TB, tx *gorm.DB, title string) *models.Category {
	t.Helper()
	category := &models.Category{
		Title:    title,
		Slug:     fmt.Sprintf("cat-%s", uuid.NewString()[:8]),
		IsActive: true,
	}
	if err := tx.Create(category).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	return category
}

// MustProduct inserts an active product under categoryID.
func MustProduct(t testing.TB, tx *gorm.DB, categoryID uuid.UUID, sku, price string) *models.Product {
	t.Helper()
	product := &models.Product{
		Title:            "Product " + sku,
		Slug:             fmt.Sprintf("product-%s", uuid.NewString()[:8]),
		SKU:              sku,
		ShortDescription: "test product",
		Price:            decimal.RequireFromString(price),
		CategoryID:       categoryID,
		IsActive:         true,
	}
	if err := tx.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}
