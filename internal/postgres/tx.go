package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pixelpalace/storefront-api/internal/domain/checkout"
)

var _ checkout.TxRunner = (*TxRunner)(nil)

// TxRunner implements checkout.TxRunner on a pgx pool. Each call opens one
// transaction, rebinds every repository to it, and commits only when fn
// returns nil. Otherwise the transaction rolls back and no step survives.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner returns a TxRunner using the given pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// InTx runs fn inside a single transaction with transaction-scoped stores.
// The cart store reads with FOR UPDATE so same-user checkouts serialize;
// cross-user stock races are settled by the conditional decrement.
func (t *TxRunner) InTx(ctx context.Context, fn func(ctx context.Context, s checkout.Stores) error) error {
	err := pgx.BeginTxFunc(ctx, t.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return fn(ctx, checkout.Stores{
			Carts:    NewCartRepository(tx).WithLockedReads(),
			Profiles: NewProfileRepository(tx),
			Orders:   NewOrderRepository(tx),
			Stock:    NewProductRepository(tx),
		})
	})
	if err != nil {
		return fmt.Errorf("checkout transaction: %w", err)
	}
	return nil
}
