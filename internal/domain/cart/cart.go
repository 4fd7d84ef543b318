// Package cart holds the per-user shopping cart domain.
package cart

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/pixelpalace/storefront-api/internal/domain/catalog"
)

// ErrNegativeQuantity is returned when a quantity argument is below zero.
// The request is rejected before any store mutation.
var ErrNegativeQuantity = errors.New("quantity must not be negative")

// Line is one (product, quantity) pair within a user's cart. Quantity is
// always at least 1 while the line exists; a quantity of 0 means the line
// is absent and is never stored.
type Line struct {
	Product  catalog.Product
	Quantity int
}

// Subtotal returns quantity times the product's current unit price.
func (l Line) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the set of lines owned by a single user. Lines are unique per
// product; ordering carries no meaning.
type Cart struct {
	UserID int
	Lines  []Line
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Total computes the cart total from current product prices at read time.
// Prices are not locked in at add time; checkout freezes them into the order.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Repository defines persistence operations for carts.
//
// AddProduct and SetQuantity must each be a single atomic write so that
// concurrent mutations of the same line never lose updates.
type Repository interface {
	// GetByUserID returns the user's cart joined with current product data.
	// A user with no lines gets an empty cart, not an error.
	GetByUserID(ctx context.Context, userID int) (*Cart, error)

	// AddProduct increments the line's quantity by 1, inserting the line
	// with quantity 1 when absent. Unknown products map to
	// catalog.ErrProductNotFound.
	AddProduct(ctx context.Context, userID, productID int) error

	// SetQuantity overwrites an existing line's quantity. Quantity 0 removes
	// the line entirely; setting a quantity on an absent line is a no-op.
	// Negative quantities are rejected with ErrNegativeQuantity.
	SetQuantity(ctx context.Context, userID, productID, quantity int) error

	// Clear removes every line for the user. Idempotent.
	Clear(ctx context.Context, userID int) error
}
