package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/pixelpalace/storefront-api/internal/domain/catalog"
)

const (
	productColumns = `product_id, name, price, category_id, description, subcategory, stock, featured, image_url`

	listProductsByCategorySQL = `SELECT ` + productColumns + `
		FROM products WHERE category_id = $1 ORDER BY product_id`

	getProductByIDSQL = `SELECT ` + productColumns + `
		FROM products WHERE product_id = $1`

	createProductSQL = `INSERT INTO products (name, price, category_id, description, subcategory, stock, featured, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING product_id`

	updateProductSQL = `UPDATE products
		SET name = COALESCE($2, name),
			price = COALESCE($3, price),
			category_id = COALESCE($4, category_id),
			description = COALESCE($5, description),
			subcategory = COALESCE($6, subcategory),
			stock = COALESCE($7, stock),
			featured = COALESCE($8, featured),
			image_url = COALESCE($9, image_url)
		WHERE product_id = $1`

	deleteProductSQL = `DELETE FROM products WHERE product_id = $1`

	// Conditional decrement: the stock guard races are settled here. The row
	// is only updated when enough stock remains, so concurrent checkouts
	// competing for the same units serialize on this write.
	decrementStockSQL = `UPDATE products SET stock = stock - $2
		WHERE product_id = $1 AND stock >= $2`

	getStockSQL = `SELECT stock FROM products WHERE product_id = $1`
)

var (
	_ catalog.ProductRepository = (*ProductRepository)(nil)
	_ catalog.StockStore        = (*ProductRepository)(nil)
)

// ProductRepository implements catalog.ProductRepository and
// catalog.StockStore backed by PostgreSQL.
type ProductRepository struct {
	db Querier
}

// NewProductRepository returns a ProductRepository using the given Querier.
func NewProductRepository(db Querier) *ProductRepository {
	return &ProductRepository{db: db}
}

// searchQuery builds the product search statement from the optional filters.
func searchQuery(f catalog.SearchFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.CategoryID != nil {
		add("category_id = $%d", *f.CategoryID)
	}
	if f.MinPrice != nil {
		add("price >= $%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add("price <= $%d", *f.MaxPrice)
	}
	if f.Subcategory != nil {
		add("subcategory = $%d", *f.Subcategory)
	}

	sql := `SELECT ` + productColumns + ` FROM products`
	if len(conds) > 0 {
		sql += " WHERE " + strings.Join(conds, " AND ")
	}
	sql += " ORDER BY product_id"
	return sql, args
}

// Search returns products matching the given optional filters.
func (r *ProductRepository) Search(ctx context.Context, f catalog.SearchFilter) ([]catalog.Product, error) {
	sql, args := searchQuery(f)
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("searching products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// ListByCategory returns all products in a category ordered by id.
func (r *ProductRepository) ListByCategory(ctx context.Context, categoryID int) ([]catalog.Product, error) {
	rows, err := r.db.Query(ctx, listProductsByCategorySQL, categoryID)
	if err != nil {
		return nil, fmt.Errorf("listing products for category %d: %w", categoryID, err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id int) (*catalog.Product, error) {
	rows, err := r.db.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}
	return &p, nil
}

// Create inserts a new product and returns its generated id.
func (r *ProductRepository) Create(ctx context.Context, p catalog.Product) (int, error) {
	var id int
	err := r.db.QueryRow(ctx, createProductSQL,
		p.Name, p.Price, p.CategoryID, p.Description, p.Subcategory, p.Stock, p.Featured, p.ImageURL,
	).Scan(&id)
	if err != nil {
		if isFKViolation(err) {
			return 0, catalog.ErrCategoryNotFound
		}
		return 0, fmt.Errorf("creating product %q: %w", p.Name, err)
	}
	return id, nil
}

// Update applies a partial update; nil fields keep their stored values.
func (r *ProductRepository) Update(ctx context.Context, id int, upd catalog.ProductUpdate) error {
	tag, err := r.db.Exec(ctx, updateProductSQL, id,
		upd.Name, upd.Price, upd.CategoryID, upd.Description, upd.Subcategory, upd.Stock, upd.Featured, upd.ImageURL,
	)
	if err != nil {
		if isFKViolation(err) {
			return catalog.ErrCategoryNotFound
		}
		return fmt.Errorf("updating product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrProductNotFound
	}
	return nil
}

// Delete removes a product by id.
func (r *ProductRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, deleteProductSQL, id)
	if err != nil {
		return fmt.Errorf("deleting product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrProductNotFound
	}
	return nil
}

// DecrementStock subtracts quantity from the product's stock, but only when
// the result stays non-negative. When the guarded update matches no row, the
// follow-up read distinguishes a missing product from insufficient stock.
func (r *ProductRepository) DecrementStock(ctx context.Context, productID, quantity int) error {
	tag, err := r.db.Exec(ctx, decrementStockSQL, productID, quantity)
	if err != nil {
		return fmt.Errorf("decrementing stock for product %d: %w", productID, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var available int
	err = r.db.QueryRow(ctx, getStockSQL, productID).Scan(&available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.ErrProductNotFound
		}
		return fmt.Errorf("checking stock for product %d: %w", productID, err)
	}

	return &catalog.InsufficientStockError{
		ProductID: productID,
		Requested: quantity,
		Available: available,
	}
}

func scanProduct(row pgx.CollectableRow) (catalog.Product, error) {
	var p catalog.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Price, &p.CategoryID,
		&p.Description, &p.Subcategory, &p.Stock, &p.Featured, &p.ImageURL,
	)
	return p, err
}
