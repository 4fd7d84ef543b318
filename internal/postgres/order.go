package postgres

import (
	"context"
	"fmt"

	"github.com/pixelpalace/storefront-api/internal/domain/order"
)

const (
	createOrderSQL = `INSERT INTO orders (user_id, date, address, city, state, zip, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING order_id`

	createOrderLineSQL = `INSERT INTO order_line_items (order_id, product_id, quantity, sales_price)
		VALUES ($1, $2, $3, $4)`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. It is
// only ever used through the checkout transaction, so the header and line
// inserts share the caller's atomicity.
type OrderRepository struct {
	db Querier
}

// NewOrderRepository returns an OrderRepository using the given Querier.
func NewOrderRepository(db Querier) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create persists the order header and one row per line item, returning the
// generated order id.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order, lines []order.Line) (int, error) {
	if len(lines) == 0 {
		return 0, order.ErrNoLines
	}

	var orderID int
	err := r.db.QueryRow(ctx, createOrderSQL,
		o.UserID, o.Date, o.Address, o.City, o.State, o.Zip, o.Total,
	).Scan(&orderID)
	if err != nil {
		return 0, fmt.Errorf("creating order for user %d: %w", o.UserID, err)
	}

	for _, l := range lines {
		_, err := r.db.Exec(ctx, createOrderLineSQL, orderID, l.ProductID, l.Quantity, l.UnitPrice)
		if err != nil {
			return 0, fmt.Errorf("creating order line for product %d: %w", l.ProductID, err)
		}
	}

	return orderID, nil
}
