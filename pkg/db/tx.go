package db

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// ContextWithTx binds a transaction to ctx so repositories built on the same
// context join it.
func ContextWithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromContext returns the transaction bound to ctx, if any.
func TxFromContext(ctx context.Context) (*gorm.DB, bool) {
	if ctx == nil {
		return nil, false
	}
	tx, ok := ctx.Value(txKey{}).(*gorm.DB)
	return tx, ok && tx != nil
}

// Conn returns the transaction bound to ctx, falling back to conn.
func Conn(ctx context.Context, conn *gorm.DB) *gorm.DB {
	if tx, ok := TxFromContext(ctx); ok {
		return tx.WithContext(ctx)
	}
	if ctx == nil {
		return conn
	}
	return conn.WithContext(ctx)
}

// InTx runs fn with a context carrying a transaction. When ctx already holds
// one, fn joins it instead of nesting.
func (c *Client) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := TxFromContext(ctx); ok {
		return fn(ctx)
	}
	return c.WithTx(ctx, func(tx *gorm.DB) error {
		return fn(ContextWithTx(ctx, tx))
	})
}
