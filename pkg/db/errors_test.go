package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/storefront-labs/storefront-backend/pkg/db/models"
	pkgerrors "github.com/storefront-labs/storefront-backend/pkg/errors"
)

func TestMapErrorClassifiesPostgresCodes(t *testing.T) {
	tests := []struct {
		code string
		want pkgerrors.Code
	}{
		{pgUniqueViolation, pkgerrors.CodeUnique},
		{pgForeignKeyViolation, pkgerrors.CodeForeignKey},
		{pgCheckViolation, pkgerrors.CodeValidation},
		{"57014", pkgerrors.CodeDependency},
	}
	for _, tt := range tests {
		err := MapError(fmt.Errorf("insert: %w", &pgconn.PgError{Code: tt.code}), "create product")
		assert.Equal(t, tt.want, pkgerrors.CodeOf(err), tt.code)
	}
}

func TestMapErrorPassesThroughTypedErrors(t *testing.T) {
	typed := pkgerrors.New(pkgerrors.CodeStateConflict, "order is delivered")
	require.Same(t, typed, pkgerrors.As(MapError(typed, "ignored")))
	require.NoError(t, MapError(nil, "ignored"))
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(MapError(gorm.ErrRecordNotFound, "load")))
}

func TestIsUniqueViolationConstraintFilter(t *testing.T) {
	err := &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "idx_products_sku"}
	assert.True(t, IsUniqueViolation(err, "idx_products_sku"))
	assert.False(t, IsUniqueViolation(err, "idx_carts_user_product"))
	assert.False(t, IsUniqueViolation(errors.New("boom"), ""))
}

func TestSQLiteConstraintErrorsAreMapped(t *testing.T) {
	db := newTestDB(t)

	category := models.Category{Title: "Tools", Slug: "tools", IsActive: true}
	require.NoError(t, db.Create(&category).Error)

	first := models.Product{
		Title: "Hammer", Slug: "hammer", SKU: "SKU-1", ShortDescription: "steel",
		Price: decimal.RequireFromString("19.99"), CategoryID: category.ID, IsActive: true,
	}
	require.NoError(t, db.Create(&first).Error)

	dup := first
	dup.ID = uuid.Nil
	err := db.Create(&dup).Error
	require.True(t, IsUniqueViolation(err, "sku"), "got %v", err)
	assert.Equal(t, pkgerrors.CodeUnique, pkgerrors.CodeOf(MapError(err, "create product")))

	orphan := first
	orphan.ID = uuid.Nil
	orphan.SKU = "SKU-2"
	orphan.CategoryID = uuid.New()
	err = db.Create(&orphan).Error
	require.True(t, IsForeignKeyViolation(err), "got %v", err)
	assert.Equal(t, pkgerrors.CodeForeignKey, pkgerrors.CodeOf(MapError(err, "create product")))

	user := models.User{Email: "a@example.com", IsActive: true}
	require.NoError(t, db.Create(&user).Error)
	err = db.Create(&models.Cart{UserID: user.ID, ProductID: first.ID, Quantity: 0}).Error
	require.True(t, IsCheckViolation(err), "got %v", err)
}
