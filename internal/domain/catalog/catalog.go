// Package catalog holds the product catalog domain: categories, products,
// and the repository contracts the rest of the system consumes them through.
package catalog

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for catalog lookups.
var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrProductNotFound  = errors.New("product not found")
)

// InsufficientStockError indicates a stock decrement would drive a product's
// stock below zero. The decrement is rejected and nothing is applied.
type InsufficientStockError struct {
	ProductID int
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// Category groups products for browsing.
type Category struct {
	ID          int
	Name        string
	Description string
}

// Product represents a catalog item available for purchase.
type Product struct {
	ID          int
	Name        string
	Price       decimal.Decimal
	CategoryID  int
	Description string
	Subcategory string
	Stock       int
	Featured    bool
	ImageURL    string
}

// SearchFilter holds optional product search criteria. A nil field means
// "no filter on this dimension"; sentinel values are never used.
type SearchFilter struct {
	CategoryID  *int
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	Subcategory *string
}

// CategoryUpdate describes a partial category update. Nil fields keep the
// stored value.
type CategoryUpdate struct {
	Name        *string
	Description *string
}

// ProductUpdate describes a partial product update. Nil fields keep the
// stored value.
type ProductUpdate struct {
	Name        *string
	Price       *decimal.Decimal
	CategoryID  *int
	Description *string
	Subcategory *string
	Stock       *int
	Featured    *bool
	ImageURL    *string
}

// CategoryRepository defines persistence operations for categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]Category, error)
	GetByID(ctx context.Context, id int) (*Category, error)
	Create(ctx context.Context, c Category) (int, error)
	Update(ctx context.Context, id int, upd CategoryUpdate) error
	Delete(ctx context.Context, id int) error
}

// ProductRepository defines persistence operations for products.
type ProductRepository interface {
	Search(ctx context.Context, f SearchFilter) ([]Product, error)
	ListByCategory(ctx context.Context, categoryID int) ([]Product, error)
	GetByID(ctx context.Context, id int) (*Product, error)
	Create(ctx context.Context, p Product) (int, error)
	Update(ctx context.Context, id int, upd ProductUpdate) error
	Delete(ctx context.Context, id int) error
}

// StockStore is the conditional stock adjustment used at checkout. Decrement
// succeeds only if the resulting stock stays non-negative; otherwise it
// returns *InsufficientStockError and applies nothing.
type StockStore interface {
	DecrementStock(ctx context.Context, productID, quantity int) error
}
