// Package checkout implements the transactional conversion of a cart into an
// order. Loading the cart and profile, freezing the total, materializing the
// order, decrementing stock per line, and clearing the cart all happen inside
// one storage transaction. Either every step commits or none do.
package checkout

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/pixelpalace/storefront-api/internal/domain/cart"
	"github.com/pixelpalace/storefront-api/internal/domain/catalog"
	"github.com/pixelpalace/storefront-api/internal/domain/order"
	"github.com/pixelpalace/storefront-api/internal/domain/profile"
	"github.com/pixelpalace/storefront-api/internal/events"
)

// ErrEmptyCart is returned when checkout is attempted with no cart lines.
// A zero-line order is a user error, not a valid free order.
var ErrEmptyCart = errors.New("cart is empty")

// Stores bundles the repositories a checkout operates on, all bound to the
// same storage transaction. The orchestrator never touches a pool directly.
type Stores struct {
	Carts    cart.Repository
	Profiles profile.Repository
	Orders   order.Repository
	Stock    catalog.StockStore
}

// TxRunner executes fn inside a single storage transaction and hands it
// transaction-scoped stores. A non-nil error from fn rolls everything back.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context, s Stores) error) error
}

// Receipt is the result of a successful checkout.
type Receipt struct {
	OrderID int
	Total   decimal.Decimal
	Message string
}

// Service is the checkout orchestrator.
type Service struct {
	tx  TxRunner
	pub events.Publisher
	lg  *zap.Logger
	now func() time.Time
}

// NewService creates a checkout Service. The publisher may be
// events.NopPublisher when order events are disabled.
func NewService(tx TxRunner, pub events.Publisher, lg *zap.Logger) *Service {
	return &Service{
		tx:  tx,
		pub: pub,
		lg:  lg,
		now: time.Now,
	}
}

// Checkout atomically converts the user's cart into an order.
//
// Inside one transaction it loads the cart (taking row locks on the cart
// lines, so a second checkout for the same user serializes behind this one
// and then observes the cleared cart) and the profile, freezes the total
// from current prices, creates the order header and lines, conditionally
// decrements stock per line, and clears the cart. Any failure aborts the
// whole unit: no order, no stock change, cart untouched.
func (s *Service) Checkout(ctx context.Context, userID int) (*Receipt, error) {
	var (
		receipt Receipt
		lines   []order.Line
	)

	err := s.tx.InTx(ctx, func(ctx context.Context, st Stores) error {
		c, err := st.Carts.GetByUserID(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "load cart")
		}
		if c.IsEmpty() {
			return ErrEmptyCart
		}

		prof, err := st.Profiles.GetByUserID(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "load profile")
		}

		// The total is computed once here and frozen into the order; later
		// price mutations never change a completed order.
		total := c.Total()

		lines = make([]order.Line, len(c.Lines))
		for i, l := range c.Lines {
			lines[i] = order.Line{
				ProductID: l.Product.ID,
				Quantity:  l.Quantity,
				UnitPrice: l.Product.Price,
			}
		}

		o := &order.Order{
			UserID:  userID,
			Date:    s.now(),
			Address: prof.Address,
			City:    prof.City,
			State:   prof.State,
			Zip:     prof.Zip,
			Total:   total,
		}
		orderID, err := st.Orders.Create(ctx, o, lines)
		if err != nil {
			return errors.Wrap(err, "create order")
		}

		for _, l := range c.Lines {
			if err := st.Stock.DecrementStock(ctx, l.Product.ID, l.Quantity); err != nil {
				return errors.Wrapf(err, "adjust stock for product %d", l.Product.ID)
			}
		}

		if err := st.Carts.Clear(ctx, userID); err != nil {
			return errors.Wrap(err, "clear cart")
		}

		receipt = Receipt{
			OrderID: orderID,
			Total:   total,
			Message: "Checkout Successful!",
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishOrderCreated(ctx, userID, receipt, lines)

	return &receipt, nil
}

// publishOrderCreated emits the order event after commit. The order is
// already durable, so publish failures are logged and never surfaced.
func (s *Service) publishOrderCreated(ctx context.Context, userID int, r Receipt, lines []order.Line) {
	ev := events.OrderCreated{
		OrderID:   r.OrderID,
		UserID:    userID,
		Total:     r.Total,
		CreatedAt: s.now(),
	}
	ev.Lines = make([]events.OrderLine, len(lines))
	for i, l := range lines {
		ev.Lines[i] = events.OrderLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		}
	}

	if err := s.pub.PublishOrderCreated(ctx, ev); err != nil {
		s.lg.Error("publish order created event",
			zap.Int("order_id", r.OrderID),
			zap.Int("user_id", userID),
			zap.Error(err),
		)
	}
}
