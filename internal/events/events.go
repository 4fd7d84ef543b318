// Package events publishes domain events to Kafka for downstream consumers
// (fulfillment, analytics). Publishing happens strictly after the owning
// transaction commits and is best-effort: the publisher reports errors but
// callers treat them as non-fatal.
package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderCreated is emitted once per successful checkout.
type OrderCreated struct {
	EventID   string          `json:"event_id"`
	OrderID   int             `json:"order_id"`
	UserID    int             `json:"user_id"`
	Total     decimal.Decimal `json:"total"`
	Lines     []OrderLine     `json:"lines"`
	CreatedAt time.Time       `json:"created_at"`
}

// OrderLine mirrors one order line item in the event payload.
type OrderLine struct {
	ProductID int             `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}
