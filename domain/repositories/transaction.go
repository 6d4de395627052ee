package repositories

import "context"

// TxManager runs fn so that every repository call made with the context it
// receives joins one store transaction, when the store supports it.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
