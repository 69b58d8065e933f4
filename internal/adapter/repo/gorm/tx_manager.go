package gormrepo

import (
	"context"

	"gorm.io/gorm"
)

// TxManager runs a unit of work inside one database transaction. Repository
// calls made with the context it hands to fn join that transaction, which is
// how storage conversion writes every player record atomically.
type TxManager struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) TxManager {
	return TxManager{db: db}
}

func (t TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(withTx(ctx, tx))
	})
}
