package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pixelpalace/storefront-api/internal/domain/cart"
	"github.com/pixelpalace/storefront-api/internal/domain/catalog"
)

const (
	getCartSQL = `SELECT s.quantity, ` + cartProductColumns + `
		FROM shopping_cart s
		JOIN products p ON p.product_id = s.product_id
		WHERE s.user_id = $1
		ORDER BY s.product_id`

	// Same read, but locking the cart rows for the rest of the transaction.
	// Two checkouts for the same user serialize here: the loser blocks until
	// the winner commits, then sees the cleared cart.
	getCartForUpdateSQL = getCartSQL + ` FOR UPDATE OF s`

	cartProductColumns = `p.product_id, p.name, p.price, p.category_id, p.description, p.subcategory, p.stock, p.featured, p.image_url`

	// Atomic upsert: two concurrent adds of the same product both land,
	// never losing an increment.
	addToCartSQL = `INSERT INTO shopping_cart (user_id, product_id, quantity)
		VALUES ($1, $2, 1)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = shopping_cart.quantity + 1`

	setCartQuantitySQL = `UPDATE shopping_cart SET quantity = $3
		WHERE user_id = $1 AND product_id = $2`

	deleteCartLineSQL = `DELETE FROM shopping_cart
		WHERE user_id = $1 AND product_id = $2`

	clearCartSQL = `DELETE FROM shopping_cart WHERE user_id = $1`
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL.
type CartRepository struct {
	db        Querier
	lockReads bool
}

// NewCartRepository returns a CartRepository using the given Querier.
func NewCartRepository(db Querier) *CartRepository {
	return &CartRepository{db: db}
}

// WithLockedReads returns a copy whose GetByUserID takes FOR UPDATE row locks
// on the cart lines. Only meaningful inside a transaction; checkout uses it
// to serialize concurrent checkouts for the same user.
func (r *CartRepository) WithLockedReads() *CartRepository {
	return &CartRepository{db: r.db, lockReads: true}
}

// GetByUserID returns the user's cart lines joined with current product data.
// A user with no lines gets an empty cart.
func (r *CartRepository) GetByUserID(ctx context.Context, userID int) (*cart.Cart, error) {
	sql := getCartSQL
	if r.lockReads {
		sql = getCartForUpdateSQL
	}

	rows, err := r.db.Query(ctx, sql, userID)
	if err != nil {
		return nil, fmt.Errorf("getting cart for user %d: %w", userID, err)
	}

	lines, err := pgx.CollectRows(rows, scanCartLine)
	if err != nil {
		return nil, fmt.Errorf("getting cart for user %d: %w", userID, err)
	}

	return &cart.Cart{UserID: userID, Lines: lines}, nil
}

// AddProduct increments the line's quantity by 1, inserting it with quantity
// 1 when absent. The whole operation is one atomic upsert.
func (r *CartRepository) AddProduct(ctx context.Context, userID, productID int) error {
	_, err := r.db.Exec(ctx, addToCartSQL, userID, productID)
	if err != nil {
		if isFKViolation(err) {
			return catalog.ErrProductNotFound
		}
		return fmt.Errorf("adding product %d to cart for user %d: %w", productID, userID, err)
	}
	return nil
}

// SetQuantity overwrites an existing line's quantity. Quantity 0 deletes the
// line; a zero-quantity row is never stored. Setting a quantity on an absent
// line is a no-op.
func (r *CartRepository) SetQuantity(ctx context.Context, userID, productID, quantity int) error {
	if quantity < 0 {
		return cart.ErrNegativeQuantity
	}

	if quantity == 0 {
		_, err := r.db.Exec(ctx, deleteCartLineSQL, userID, productID)
		if err != nil {
			return fmt.Errorf("removing product %d from cart for user %d: %w", productID, userID, err)
		}
		return nil
	}

	_, err := r.db.Exec(ctx, setCartQuantitySQL, userID, productID, quantity)
	if err != nil {
		return fmt.Errorf("setting quantity for product %d in cart for user %d: %w", productID, userID, err)
	}
	return nil
}

// Clear removes all lines for the user. Succeeds even when the cart is
// already empty.
func (r *CartRepository) Clear(ctx context.Context, userID int) error {
	_, err := r.db.Exec(ctx, clearCartSQL, userID)
	if err != nil {
		return fmt.Errorf("clearing cart for user %d: %w", userID, err)
	}
	return nil
}

func scanCartLine(row pgx.CollectableRow) (cart.Line, error) {
	var l cart.Line
	err := row.Scan(
		&l.Quantity,
		&l.Product.ID, &l.Product.Name, &l.Product.Price, &l.Product.CategoryID,
		&l.Product.Description, &l.Product.Subcategory, &l.Product.Stock,
		&l.Product.Featured, &l.Product.ImageURL,
	)
	return l, err
}
