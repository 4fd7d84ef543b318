package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNoLines is returned when an order would be created with no line items.
var ErrNoLines = errors.New("order requires at least one line item")

// Order is the order header: created exactly once by checkout, immutable
// thereafter. Shipping fields are copied from the profile at checkout time
// and the total is frozen against later price changes.
type Order struct {
	ID      int
	UserID  int
	Date    time.Time
	Address string
	City    string
	State   string
	Zip     string
	Total   decimal.Decimal
}

// Line is one order line item. UnitPrice is the product price at the time
// of purchase, copied rather than referenced.
type Line struct {
	ProductID int
	Quantity  int
	UnitPrice decimal.Decimal
}

// Repository defines persistence operations for orders.
type Repository interface {
	// Create persists the order header and one row per line, returning the
	// new order id. It must reject an empty line set with ErrNoLines.
	Create(ctx context.Context, o *Order, lines []Line) (int, error)
}
