package repo

import (
	"context"

	"github.com/angelmondragon/catalog-backend/pkg/db"
	"gorm.io/gorm"
)

// Base provides a shared foundation for catalog repositories.
type Base struct {
	db *gorm.DB
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase(conn *gorm.DB) Base {
	return Base{db: conn}
}

// DB returns the transaction bound to ctx, or the base connection scoped to ctx.
func (b Base) DB(ctx context.Context) *gorm.DB {
	return db.Conn(ctx, b.db)
}

// Exists reports whether table holds a row with the given primary key.
func (b Base) Exists(ctx context.Context, table string, id any) (bool, error) {
	var count int64
	if err := b.DB(ctx).Table(table).Where("id = ?", id).Limit(1).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
