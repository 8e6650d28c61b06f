package product

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/storefront-labs/storefront-backend/pkg/db/dbtest"
	"github.com/storefront-labs/storefront-backend/pkg/db/models"
	pkgerrors "github.com/storefront-labs/storefront-backend/pkg/errors"
	"github.com/storefront-labs/storefront-backend/pkg/logger"
	"github.com/storefront-labs/storefront-backend/pkg/pagination"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn), logger.New(logger.Options{ServiceName: "products-test", Output: io.Discard}))
	require.NoError(t, err)
	return svc, conn
}

func boolPtr(v bool) *bool { return &v }
func stringPtr(v string) *string { return &v }

func validInput(categoryID uuid.UUID, sku string) CreateProductInput {
	return CreateProductInput{
		Title:            "Cast Iron Skillet",
		SKU:              sku,
		ShortDescription: "10 inch pan",
		Price:            decimal.RequireFromString("19.99"),
		CategoryID:       categoryID,
		IsActive:         true,
	}
}

func TestCreateProductDerivesSlugAndKeepsDecimalPrice(t *testing.T) {
	svc, conn := newTestService(t)
	category := dbtest.MustCategory(t, conn, "Kitchen")

	created, err := svc.Create(context.Background(), validInput(category.ID, "SKU-1"))
	require.NoError(t, err)
	assert.Equal(t, "cast-iron-skillet", created.Slug)
	assert.True(t, created.Price.Equal(decimal.RequireFromString("19.99")))

	bySKU, err := svc.GetBySKU(context.Background(), "SKU-1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, bySKU.ID)
	assert.Equal(t, "19.99", bySKU.Price.String())

	bySlug, err := svc.GetBySlug(context.Background(), "cast-iron-skillet")
	require.NoError(t, err)
	assert.Equal(t, created.ID, bySlug.ID)
}

func TestCreateDuplicateSKULeavesExistingRowUntouched(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	category := dbtest.MustCategory(t, conn, "Kitchen")

	original, err := svc.Create(ctx, validInput(category.ID, "SKU-1"))
	require.NoError(t, err)

	dup := validInput(category.ID, "SKU-1")
	dup.Title = "Impostor"
	dup.Price = decimal.RequireFromString("1.00")
	_, err = svc.Create(ctx, dup)
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeUnique), "got %v", err)

	var count int64
	require.NoError(t, conn.Model(&models.Product{}).Where("sku = ?", "SKU-1").Count(&count).Error)
	assert.Equal(t, int64(1), count)

	reloaded, err := svc.Get(ctx, original.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cast Iron Skillet", reloaded.Title)
	assert.True(t, reloaded.Price.Equal(original.Price))
}

func TestCreateProductValidation(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	category := dbtest.MustCategory(t, conn, "Kitchen")

	tests := map[string]func(*CreateProductInput){
		"negative price":     func(in *CreateProductInput) { in.Price = decimal.RequireFromString("-1") },
		"three decimals":     func(in *CreateProductInput) { in.Price = decimal.RequireFromString("1.005") },
		"too large":          func(in *CreateProductInput) { in.Price = decimal.RequireFromString("1000000") },
		"blank title":        func(in *CreateProductInput) { in.Title = "   " },
		"missing short desc": func(in *CreateProductInput) { in.ShortDescription = "" },
		"bad slug":           func(in *CreateProductInput) { in.Slug = "Bad Slug" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			input := validInput(category.ID, "SKU-"+name)
			mutate(&input)
			_, err := svc.Create(ctx, input)
			assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation), "got %v", err)
		})
	}
}

func TestCreateProductUnknownCategory(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), validInput(uuid.New(), "SKU-X"))
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeForeignKey), "got %v", err)
}

func TestUpdateProductPriceAndSKUConflict(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	category := dbtest.MustCategory(t, conn, "Kitchen")

	first, err := svc.Create(ctx, validInput(category.ID, "SKU-1"))
	require.NoError(t, err)
	second, err := svc.Create(ctx, validInput(category.ID, "SKU-2"))
	require.NoError(t, err)

	price := decimal.RequireFromString("9.99")
	updated, err := svc.Update(ctx, first.ID, UpdateProductInput{Price: &price, Title: stringPtr(" Skillet ")})
	require.NoError(t, err)
	assert.Equal(t, "9.99", updated.Price.String())
	assert.Equal(t, "Skillet", updated.Title)
	assert.Equal(t, first.Slug, updated.Slug)

	_, err = svc.Update(ctx, second.ID, UpdateProductInput{SKU: stringPtr("SKU-1")})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeUnique))

	bad := decimal.RequireFromString("-3")
	_, err = svc.Update(ctx, second.ID, UpdateProductInput{Price: &bad})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

func TestListProductsFilters(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	kitchen := dbtest.MustCategory(t, conn, "Kitchen")
	garden := dbtest.MustCategory(t, conn, "Garden")

	_, err := svc.Create(ctx, validInput(kitchen.ID, "K-1"))
	require.NoError(t, err)
	featured := validInput(kitchen.ID, "K-2")
	featured.IsFeatured = true
	_, err = svc.Create(ctx, featured)
	require.NoError(t, err)
	inactive := validInput(garden.ID, "G-1")
	inactive.IsActive = false
	_, err = svc.Create(ctx, inactive)
	require.NoError(t, err)

	byCategory, err := svc.List(ctx, ListFilters{CategoryID: &kitchen.ID}, pagination.Params{})
	require.NoError(t, err)
	assert.Len(t, byCategory.Items, 2)
	assert.Equal(t, "K-2", byCategory.Items[0].SKU)

	active, err := svc.List(ctx, ListFilters{IsActive: boolPtr(true)}, pagination.Params{})
	require.NoError(t, err)
	assert.Len(t, active.Items, 2)

	onlyFeatured, err := svc.List(ctx, ListFilters{IsFeatured: boolPtr(true)}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, onlyFeatured.Items, 1)
	assert.Equal(t, "K-2", onlyFeatured.Items[0].SKU)
}

func TestDeleteProductCascadesToCartsAndOrders(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	user := dbtest.MustUser(t, conn)
	addr := dbtest.MustAddress(t, conn, user.ID)
	category := dbtest.MustCategory(t, conn, "Kitchen")
	product := dbtest.MustProduct(t, conn, category.ID, "SKU-D", "2.50")

	require.NoError(t, conn.Create(&models.Cart{UserID: user.ID, ProductID: product.ID, Quantity: 2}).Error)
	require.NoError(t, conn.Create(&models.Order{UserID: user.ID, AddressID: addr.ID, ProductID: product.ID, Quantity: 2}).Error)

	require.NoError(t, svc.Delete(ctx, product.ID))

	for _, model := range []any{&models.Cart{}, &models.Order{}} {
		var count int64
		require.NoError(t, conn.Model(model).Where("product_id = ?", product.ID).Count(&count).Error)
		assert.Zero(t, count)
	}
	assert.True(t, pkgerrors.Is(svc.Delete(ctx, product.ID), pkgerrors.CodeNotFound))
}
