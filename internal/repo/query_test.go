package repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront-labs/storefront-backend/pkg/db/dbtest"
	"github.com/storefront-labs/storefront-backend/pkg/db/models"
	pkgerrors "github.com/storefront-labs/storefront-backend/pkg/errors"
	"github.com/storefront-labs/storefront-backend/pkg/pagination"
)

func TestApplyCursorWalksNewestFirst(t *testing.T) {
	db := dbtest.Open(t)

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	var created []models.Category
	for i := 0; i < 5; i++ {
		c := models.Category{Title: "c", Slug: "c", IsActive: true, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, db.Create(&c).Error)
		created = append(created, c)
	}

	key := func(c models.Category) pagination.Cursor {
		return pagination.Cursor{CreatedAt: c.CreatedAt, ID: c.ID}
	}

	var seen []models.Category
	params := pagination.Params{Limit: 2}
	for {
		q, err := ApplyCursor(db.Model(&models.Category{}), params)
		require.NoError(t, err)
		var rows []models.Category
		require.NoError(t, q.Find(&rows).Error)

		page := pagination.BuildPage(rows, params.Limit, key)
		seen = append(seen, page.Items...)
		if page.NextCursor == "" {
			break
		}
		params.Cursor = page.NextCursor
	}

	require.Len(t, seen, 5)
	for i := range seen {
		assert.Equal(t, created[4-i].ID, seen[i].ID)
	}
}

func TestApplyCursorRejectsGarbage(t *testing.T) {
	db := dbtest.Open(t)
	_, err := ApplyCursor(db, pagination.Params{Cursor: "%%%"})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

func TestUpdateVersioned(t *testing.T) {
	db := dbtest.Open(t)
	user := dbtest.MustUser(t, db)
	category := dbtest.MustCategory(t, db, "Tools")
	product := dbtest.MustProduct(t, db, category.ID, "SKU-V", "5.00")

	cart := models.Cart{UserID: user.ID, ProductID: product.ID, Quantity: 1}
	require.NoError(t, db.Create(&cart).Error)
	require.Equal(t, 1, cart.Version)

	require.NoError(t, UpdateVersioned(db, &models.Cart{}, cart.ID, 1, map[string]any{"quantity": 4}))

	err := UpdateVersioned(db, &models.Cart{}, cart.ID, 1, map[string]any{"quantity": 9})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeConflict))

	var reloaded models.Cart
	require.NoError(t, db.First(&reloaded, "id = ?", cart.ID).Error)
	assert.Equal(t, 4, reloaded.Quantity)
	assert.Equal(t, 2, reloaded.Version)
}
