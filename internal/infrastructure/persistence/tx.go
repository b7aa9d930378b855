package persistence

import (
	"context"

	"gorm.io/gorm"
)

// txKey is the context key carrying an open transaction handle
type txKey struct{}

// TxManager runs functions inside a database transaction propagated through
// the context. Nested WithTx calls join the ambient transaction, so a
// generation pipeline commits or rolls back as one unit.
type TxManager struct {
	db *gorm.DB
}

// NewTxManager creates a transaction manager over the given connection
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// WithTx executes fn within a transaction. If the context already carries a
// transaction, fn joins it; otherwise a new one is opened and committed when
// fn returns nil, rolled back when it returns an error.
func (m *TxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := TxFromContext(ctx); ok {
		return fn(ctx)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// TxFromContext returns the transaction carried by the context, if any
func TxFromContext(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(txKey{}).(*gorm.DB)
	return tx, ok
}

// dbFrom resolves the handle repositories should use: the ambient
// transaction when one is open, the plain connection otherwise.
func dbFrom(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	return fallback.WithContext(ctx)
}

// transact runs fn in the ambient transaction when one is open, otherwise in
// a fresh transaction on db.
func transact(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if tx, ok := TxFromContext(ctx); ok {
		return fn(tx)
	}
	return db.WithContext(ctx).Transaction(fn)
}
