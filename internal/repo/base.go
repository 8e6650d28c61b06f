// Package repo holds the pieces every gorm repository shares.
package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base is embedded by repositories. Its connection is either the pool or an open
// transaction, never both.
type Base struct {
	conn *gorm.DB
}

func NewBase(conn *gorm.DB) Base {
	return Base{conn: conn}
}

// DB scopes the connection to ctx.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx != nil {
		return b.conn.WithContext(ctx)
	}
	return b.conn
}

// WithTx rebinds to tx so reads and writes join the caller's transaction.
func (b Base) WithTx(tx *gorm.DB) Base {
	if tx != nil {
		b.conn = tx
	}
	return b
}
