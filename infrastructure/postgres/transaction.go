package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"taskhub/domain/repositories"
)

type txKey struct{}

type TxManagerImpl struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) repositories.TxManager {
	return &TxManagerImpl{db: db}
}

// WithinTransaction joins an outer transaction when ctx already carries one
func (m *TxManagerImpl) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn returns the transaction carried by ctx, or db bound to ctx
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repositories.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return repositories.ErrDuplicateEmail
	}
	return err
}
