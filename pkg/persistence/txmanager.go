package persistence

import "context"

// TxManager runs fn inside a multi-document transaction.
// Every store call made with txCtx joins the transaction; fn may be retried
// on transient errors and must be safe to run more than once.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(txCtx context.Context) (any, error)) (any, error)
}
