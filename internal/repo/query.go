package repo

import (
	"fmt"
	"maps"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/storefront-labs/storefront-backend/pkg/errors"
	"github.com/storefront-labs/storefront-backend/pkg/pagination"
)

// ApplyCursor orders q by created_at newest first and resumes after the cursor in
// params. The query fetches one extra row so pagination.BuildPage can detect a
// next page.
func ApplyCursor(q *gorm.DB, params pagination.Params) (*gorm.DB, error) {
	return ApplyCursorOn(q, "created_at", params)
}

// ApplyCursorOn is ApplyCursor keyed on a different timestamp column.
func ApplyCursorOn(q *gorm.DB, column string, params pagination.Params) (*gorm.DB, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if cursor != nil {
		q = q.Where(
			fmt.Sprintf("(%[1]s < ?) OR (%[1]s = ? AND id < ?)", column),
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}
	return q.
		Order(column + " DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)), nil
}

// UpdateVersioned writes updates to the row with the given id only while its
// version still matches, bumping the version in the same statement. Losing the
// race returns CONFLICT.
func UpdateVersioned(db *gorm.DB, model any, id uuid.UUID, version int, updates map[string]any) error {
	values := maps.Clone(updates)
	if values == nil {
		values = map[string]any{}
	}
	values["version"] = gorm.Expr("version + 1")

	res := db.Model(model).Where("id = ? AND version = ?", id, version).Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "row was modified concurrently").
			WithDetails(map[string]any{"id": id, "version": version})
	}
	return nil
}
