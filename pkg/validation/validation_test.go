package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/storefront-labs/storefront-backend/pkg/errors"
)

type sample struct {
	Title  string `json:"title" validate:"required,max=5"`
	Slug   string `json:"slug" validate:"omitempty,slug"`
	Status string `json:"status" validate:"omitempty,order_status"`
	Qty    int    `json:"quantity" validate:"min=1"`
}

func TestStructReportsJSONFieldNames(t *testing.T) {
	err := Struct(&sample{Title: "too long", Slug: "Not A Slug", Status: "Lost", Qty: 0})
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "must be at most 5", details["title"])
	assert.Equal(t, "must be lowercase letters, digits and hyphens", details["slug"])
	assert.Equal(t, "must be a known order status", details["status"])
	assert.Equal(t, "must be at least 1", details["quantity"])

	require.NoError(t, Struct(&sample{Title: "ok", Slug: "new-arrivals", Status: "On The Way", Qty: 2}))
}

func TestPrice(t *testing.T) {
	valid := []string{"0", "19.99", "9.9", "999999.99", "10.50"}
	for _, raw := range valid {
		assert.NoError(t, Price("price", decimal.RequireFromString(raw)), raw)
	}

	invalid := []string{"-0.01", "1.999", "1000000", "1000000.00"}
	for _, raw := range invalid {
		err := Price("price", decimal.RequireFromString(raw))
		assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation), raw)
	}
}

func TestRequiredAndQuantity(t *testing.T) {
	got, err := Required("city", "  Lagos ", 150)
	require.NoError(t, err)
	assert.Equal(t, "Lagos", got)

	_, err = Required("city", "   ", 150)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))

	_, err = Required("city", "abcdef", 5)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))

	assert.Error(t, Quantity("quantity", 0))
	assert.Error(t, Quantity("quantity", -3))
	assert.NoError(t, Quantity("quantity", 1))
	assert.NoError(t, Quantity("quantity", MaxQuantity))
	assert.True(t, pkgerrors.Is(Quantity("quantity", MaxQuantity+1), pkgerrors.CodeValidation))
}
