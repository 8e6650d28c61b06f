package users

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront-labs/storefront-backend/pkg/db/dbtest"
	"github.com/storefront-labs/storefront-backend/pkg/db/models"
	pkgerrors "github.com/storefront-labs/storefront-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *Repository) {
	t.Helper()
	repo := NewRepository(dbtest.Open(t))
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc, repo
}

func TestUpsertCreatesThenRefreshesEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	id := uuid.New()

	created, err := svc.Upsert(ctx, UpsertUserDTO{ID: id, Email: " Ada@Example.com "})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", created.Email)
	assert.True(t, created.IsActive)

	updated, err := svc.Upsert(ctx, UpsertUserDTO{ID: id, Email: "ada@lovelace.dev"})
	require.NoError(t, err)
	assert.Equal(t, id, updated.ID)
	assert.Equal(t, "ada@lovelace.dev", updated.Email)
}

func TestUpsertNormalizesBeforeValidating(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.Upsert(ctx, UpsertUserDTO{ID: uuid.New(), Email: "\tGrace@Navy.MIL \n"})
	require.NoError(t, err)
	assert.Equal(t, "grace@navy.mil", user.Email)

	_, err = svc.Upsert(ctx, UpsertUserDTO{ID: uuid.New(), Email: "   "})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

func TestUpsertValidatesInput(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Upsert(context.Background(), UpsertUserDTO{ID: uuid.New(), Email: "not-an-email"})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

func TestDeleteCascadesToOwnedRows(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	conn := repo.DB(ctx)

	user := dbtest.MustUser(t, conn)
	addr := dbtest.MustAddress(t, conn, user.ID)
	category := dbtest.MustCategory(t, conn, "Books")
	product := dbtest.MustProduct(t, conn, category.ID, "SKU-U", "12.00")
	require.NoError(t, conn.Create(&models.Cart{UserID: user.ID, ProductID: product.ID, Quantity: 1}).Error)
	require.NoError(t, conn.Create(&models.Order{UserID: user.ID, AddressID: addr.ID, ProductID: product.ID, Quantity: 1}).Error)

	require.NoError(t, svc.Delete(ctx, user.ID))

	for _, model := range []any{&models.Address{}, &models.Cart{}, &models.Order{}} {
		var count int64
		require.NoError(t, conn.Model(model).Where("user_id = ?", user.ID).Count(&count).Error)
		assert.Zero(t, count)
	}

	_, err := svc.Get(ctx, user.ID)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))
	assert.True(t, pkgerrors.Is(svc.Delete(ctx, user.ID), pkgerrors.CodeNotFound))
}
