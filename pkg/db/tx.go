package db

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// InTx runs fn in one transaction and threads the transactional handle
// through the context, so repositories from different modules resolved via
// FromContext share the same unit of work.
func (d *DB) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// FromContext returns the transactional handle placed by InTx, or fallback
// when the context carries none.
func FromContext(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback
}
